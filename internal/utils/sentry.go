package utils

import (
	"fmt"
	"time"

	"github.com/onegreenvn/student-campaigns-backend/internal/config"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry initializes Sentry for error tracking. An empty DSN leaves it disabled.
func InitSentry(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		logrus.Info("Sentry DSN not set, error reporting disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}

	logrus.Infof("Sentry initialized for environment %s", cfg.Environment)
	return nil
}

// FlushSentry waits for buffered events before shutdown
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports an unexpected error with request tags. It is a no-op
// when Sentry is not initialized.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
