package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// PostgresBackend stores the collection as one jsonb row of a key-value table:
//
//	CREATE TABLE permit_store (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
type PostgresBackend struct {
	DB     *sql.DB
	Table  string
	Key    string
	Logger *logrus.Logger
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, b.Table)

	var value []byte
	err := b.DB.QueryRowContext(ctx, query, b.Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		b.Logger.WithError(err).WithFields(logrus.Fields{
			"table": b.Table,
			"key":   b.Key,
		}).Error("Failed to read collection row")
		return nil, fmt.Errorf("failed to read %s: %w", b.Key, err)
	}
	return value, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`, b.Table)

	if _, err := b.DB.ExecContext(ctx, query, b.Key, string(data)); err != nil {
		b.Logger.WithError(err).WithFields(logrus.Fields{
			"table": b.Table,
			"key":   b.Key,
		}).Error("Failed to write collection row")
		return fmt.Errorf("failed to write %s: %w", b.Key, err)
	}
	return nil
}

// Check pings the database
func (b *PostgresBackend) Check(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("%w: no database connection", ErrUnavailable)
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
