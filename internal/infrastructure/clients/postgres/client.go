package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/caredesk/patient-admin/pkg/config"
	"github.com/caredesk/patient-admin/pkg/retry"
)

// Client represents a PostgreSQL database client
type Client struct {
	db          *sql.DB
	callTimeout time.Duration
}

// NewClient creates a new PostgreSQL client with exponential backoff retry
// on the initial connectivity check
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	retryConfig := retry.DefaultConfig()
	err = retry.DoWithLog(
		context.Background(),
		retryConfig,
		"PostgreSQL",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("PostgreSQL connection attempt failed, retrying")
		},
	)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}

	return &Client{db: db, callTimeout: callTimeout}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// CallContext derives a context bounded by the configured per-call timeout.
// Adapters wrap each store round-trip with it.
func (c *Client) CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.callTimeout)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks the database connection
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.CallContext(ctx)
	defer cancel()
	return c.db.PingContext(ctx)
}
