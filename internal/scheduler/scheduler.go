// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TokenPurger deletes refresh tokens that expired before now or were revoked
// before revokedBefore.
type TokenPurger interface {
	DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}

// RevokedRetention is how long revoked tokens are kept before purging.
const RevokedRetention = 24 * time.Hour

// Scheduler wraps a cron runner with the service's jobs.
type Scheduler struct {
	cron    *cron.Cron
	tokens  TokenPurger
	log     logrus.FieldLogger
	onPurge func(n int64)
}

// New registers the token cleanup job on spec (standard 5-field cron or a
// descriptor such as @hourly).  onPurge, if non-nil, receives the number of
// rows removed by each run.
func New(spec string, tokens TokenPurger, log logrus.FieldLogger, onPurge func(n int64)) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log}))),
		tokens:  tokens,
		log:     log,
		onPurge: onPurge,
	}
	if _, err := s.cron.AddFunc(spec, s.purgeTokens); err != nil {
		return nil, fmt.Errorf("schedule token cleanup %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and returns a context that is done when running
// jobs have finished.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) purgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	now := time.Now().UTC()
	n, err := s.tokens.DeleteStale(ctx, now, now.Add(-RevokedRetention))
	if err != nil {
		s.log.WithError(err).Error("token cleanup failed")
		return
	}
	if s.onPurge != nil {
		s.onPurge(n)
	}
	s.log.WithField("deleted", n).Info("token cleanup finished")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct{ l logrus.FieldLogger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.WithFields(fields(kv)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.WithError(err).WithFields(fields(kv)).Error("cron: " + msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
