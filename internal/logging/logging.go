package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger and returns it.  Production
// logs are JSON; everything else uses the text formatter.  Unknown level
// names fall back to info.
func Setup(level string, prod bool) *logrus.Logger {
	return configure(logrus.StandardLogger(), os.Stderr, level, prod)
}

func configure(l *logrus.Logger, out io.Writer, level string, prod bool) *logrus.Logger {
	l.SetOutput(out)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if prod {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
