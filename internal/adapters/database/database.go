// Package database implements the domain repository interfaces on top of
// PostgreSQL using the goqu query builder.
package database

import (
	"context"
	"time"

	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	"github.com/caredesk/patient-admin/pkg/retry"
)

// readRetry is the backoff policy for idempotent reads. Writes are never
// retried here: the patient-create step is not idempotent and a retried
// insert could manufacture duplicate rows.
var readRetry = retry.Config{
	MaxAttempts:   3,
	InitialDelay:  50 * time.Millisecond,
	MaxDelay:      time.Second,
	BackoffFactor: 2.0,
}

// withReadRetry runs an idempotent read against the store with the
// per-call timeout and retry policy applied.
func withReadRetry(ctx context.Context, client *postgres.Client, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, readRetry, func() error {
		callCtx, cancel := client.CallContext(ctx)
		defer cancel()
		return fn(callCtx)
	})
}
