// Package service holds the credit ledger workflows.  Every balance change
// runs in one database transaction together with its ledger row, and an
// event is published only after the commit succeeds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/queue"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/utils"
)

var (
	ErrOpportunityInactive = errors.New("opportunity is not accepting applications")
	ErrRewardInactive      = errors.New("reward is not available")
	ErrInvalidStatus       = errors.New("invalid status")

	// Re-exported so handlers only need this package for ledger outcomes.
	ErrInsufficientCredits = repository.ErrInsufficientCredits
	ErrInvalidTransition   = repository.ErrInvalidTransition
)

// RedeemResult is returned by Redeem.  The voucher code is disclosed only
// here.
type RedeemResult struct {
	Redemption  model.Redemption `json:"redemption"`
	VoucherCode string           `json:"voucherCode"`
}

// Options tune a Ledger.  Zero values select the defaults.
type Options struct {
	// StrictOwnership makes status changes require the caller to own the
	// opportunity.  With it off, any police user may change any application.
	StrictOwnership bool
	Publisher       EventPublisher
	Recorder        Recorder
	Log             logrus.FieldLogger
}

// Ledger implements apply, status changes with credit award, and redeem.
type Ledger struct {
	db      *sqlx.DB
	opps    *repository.OpportunityRepo
	apps    *repository.ApplicationRepo
	rewards *repository.RewardRepo
	entries *repository.LedgerRepo

	strict  bool
	events  EventPublisher
	metrics Recorder
	log     logrus.FieldLogger
}

// NewLedger wires the repositories over db.
func NewLedger(db *sqlx.DB, opts Options) *Ledger {
	l := &Ledger{
		db:      db,
		opps:    repository.NewOpportunityRepo(db),
		apps:    repository.NewApplicationRepo(db),
		rewards: repository.NewRewardRepo(db),
		entries: repository.NewLedgerRepo(db),
		strict:  opts.StrictOwnership,
		events:  opts.Publisher,
		metrics: opts.Recorder,
		log:     opts.Log,
	}
	if l.events == nil {
		l.events = NopPublisher{}
	}
	if l.metrics == nil {
		l.metrics = nopRecorder{}
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	return l
}

// Apply creates a pending application for a citizen.  The opportunity must
// exist and be active, and the citizen must not have applied before.
func (l *Ledger) Apply(ctx context.Context, userID, opportunityID string) (*model.Application, error) {
	opp, err := l.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !opp.IsActive {
		return nil, ErrOpportunityInactive
	}
	exists, err := l.apps.Exists(ctx, userID, opportunityID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrAlreadyApplied
	}
	app, err := l.apps.Create(ctx, userID, opportunityID)
	if err != nil {
		return nil, err
	}
	l.metrics.StatusChanged(string(model.StatusPending))
	return app, nil
}

// SetStatus moves an application along pending -> approved|rejected ->
// completed.  Completing awards the opportunity's credits.
func (l *Ledger) SetStatus(ctx context.Context, callerID, applicationID string, to model.ApplicationStatus) (*model.Application, error) {
	if !model.IsValidStatus(string(to)) {
		return nil, ErrInvalidStatus
	}
	if to == model.StatusCompleted {
		return l.complete(ctx, callerID, applicationID)
	}

	app, err := l.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := l.CheckOwner(ctx, callerID, app.OpportunityID); err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() || !model.CanTransition(app.Status, to) {
		return nil, ErrInvalidTransition
	}
	updated, err := l.apps.UpdateStatus(ctx, applicationID, app.Status, to)
	if err != nil {
		return nil, err
	}
	l.metrics.StatusChanged(string(to))
	return updated, nil
}

// complete is the award-on-completion path.  The status change, the credit
// and the earned transaction commit together or not at all; the
// conditional status update guarantees a single award per application.
func (l *Ledger) complete(ctx context.Context, callerID, applicationID string) (*model.Application, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	app, err := l.apps.GetByIDTx(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	opp, err := l.opps.GetByIDTx(ctx, tx, app.OpportunityID)
	if err != nil {
		return nil, err
	}
	if l.strict && opp.CreatedByID != callerID {
		return nil, repository.ErrForbidden
	}

	now := time.Now().UTC()
	if err := l.apps.CompleteTx(ctx, tx, app.ID, now); err != nil {
		return nil, err
	}
	var entry *model.Transaction
	if opp.CreditsReward > 0 {
		if err := l.entries.CreditTx(ctx, tx, app.UserID, opp.CreditsReward); err != nil {
			return nil, err
		}
		related := opp.ID
		entry = &model.Transaction{
			UserID:      app.UserID,
			Type:        model.TransactionEarned,
			Amount:      opp.CreditsReward,
			Description: "Completed: " + opp.Title,
			RelatedID:   &related,
		}
		if err := l.entries.AppendTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}
	balance, err := l.entries.BalanceTx(ctx, tx, app.UserID)
	if err != nil {
		return nil, err
	}
	l.reconcile(ctx, tx, app.UserID, balance)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	app.Status = model.StatusCompleted
	app.CompletedAt = &now
	l.metrics.StatusChanged(string(model.StatusCompleted))
	if entry != nil {
		l.metrics.CreditsEarned(entry.Amount)
		l.publish(ctx, entry, balance)
	}
	l.log.WithFields(logrus.Fields{
		"application_id": app.ID, "user_id": app.UserID, "credits": opp.CreditsReward,
	}).Info("application completed")
	return app, nil
}

// Redeem exchanges a reward for a voucher.  The debit is conditional on the
// balance, so concurrent redemptions can never overdraw; when it fails
// nothing is written.
func (l *Ledger) Redeem(ctx context.Context, userID, rewardID string) (*RedeemResult, error) {
	reward, err := l.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, ErrRewardInactive
	}
	code, err := utils.NewVoucherCode(reward.Brand)
	if err != nil {
		return nil, fmt.Errorf("voucher code: %w", err)
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := l.entries.DebitTx(ctx, tx, userID, reward.CreditsRequired); err != nil {
		return nil, err
	}
	red := model.Redemption{UserID: userID, RewardID: reward.ID, VoucherCode: code}
	if err := l.entries.CreateRedemptionTx(ctx, tx, &red); err != nil {
		return nil, err
	}
	related := reward.ID
	entry := &model.Transaction{
		UserID:      userID,
		Type:        model.TransactionSpent,
		Amount:      reward.CreditsRequired,
		Description: "Redeemed: " + reward.Title,
		RelatedID:   &related,
	}
	if err := l.entries.AppendTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	balance, err := l.entries.BalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	l.reconcile(ctx, tx, userID, balance)
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	l.metrics.CreditsSpent(entry.Amount)
	l.metrics.Redeemed(reward.Brand)
	l.publish(ctx, entry, balance)
	return &RedeemResult{Redemption: red, VoucherCode: code}, nil
}

// CheckOwner returns repository.ErrForbidden when strict ownership is on and
// callerID did not create the opportunity.
func (l *Ledger) CheckOwner(ctx context.Context, callerID, opportunityID string) error {
	if !l.strict {
		return nil
	}
	opp, err := l.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return err
	}
	if opp.CreatedByID != callerID {
		return repository.ErrForbidden
	}
	return nil
}

// reconcile compares the balance with the user's ledger inside the writing
// transaction and reports drift.  It never blocks the write.
func (l *Ledger) reconcile(ctx context.Context, tx *sqlx.Tx, userID string, balance int) {
	sum, err := l.entries.LedgerSum(ctx, tx, userID)
	if err != nil {
		l.log.WithError(err).WithField("user_id", userID).Warn("ledger reconcile skipped")
		return
	}
	if sum != balance {
		l.log.WithFields(logrus.Fields{
			"user_id": userID, "balance": balance, "ledger_sum": sum,
		}).Error("ledger drift")
	}
}

// publish runs detached from the request's cancellation.  Failures are
// logged only.
func (l *Ledger) publish(ctx context.Context, t *model.Transaction, balance int) {
	related := ""
	if t.RelatedID != nil {
		related = *t.RelatedID
	}
	ev := queue.LedgerEvent{
		Type:        string(t.Type),
		UserID:      t.UserID,
		Amount:      t.Amount,
		Balance:     balance,
		Description: t.Description,
		RelatedID:   related,
		OccurredAt:  t.CreatedAt.UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.events.Publish(pctx, ev); err != nil {
		l.log.WithError(err).WithField("user_id", t.UserID).Warn("ledger event not published")
	}
}
