package dedup

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/kapu/courtside-go/pkg/errors"
)

// PostgresLedger keeps the ledger in the post_ledger table created by the
// database migrations.
type PostgresLedger struct {
	db        *sql.DB
	retention time.Duration
}

func NewPostgresLedger(db *sql.DB, retention time.Duration) *PostgresLedger {
	return &PostgresLedger{db: db, retention: retention}
}

const (
	seenQuery = `SELECT EXISTS (
		SELECT 1 FROM post_ledger WHERE handle = $1 AND subject = $2 AND day = $3
	)`
	markQuery = `INSERT INTO post_ledger (handle, subject, day, posted_at, tweet_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (handle, subject, day) DO NOTHING`
	sweepQuery = `DELETE FROM post_ledger WHERE posted_at < $1`
)

func (l *PostgresLedger) Seen(ctx context.Context, key Key) (bool, error) {
	var exists bool
	if err := l.db.QueryRowContext(ctx, seenQuery, key.Handle, key.Subject, key.Day).Scan(&exists); err != nil {
		return false, apperrors.NewServiceError("post ledger lookup failed", "postgres", "seen", err)
	}
	return exists, nil
}

func (l *PostgresLedger) Mark(ctx context.Context, entry Entry) error {
	k := entry.Key
	if _, err := l.db.ExecContext(ctx, markQuery, k.Handle, k.Subject, k.Day, entry.PostedAt, entry.TweetID); err != nil {
		return apperrors.NewServiceError("post ledger insert failed", "postgres", "mark", err)
	}
	return nil
}

func (l *PostgresLedger) Sweep(ctx context.Context, now time.Time) (int, error) {
	res, err := l.db.ExecContext(ctx, sweepQuery, now.Add(-l.retention))
	if err != nil {
		return 0, apperrors.NewServiceError("post ledger sweep failed", "postgres", "sweep", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewServiceError("post ledger sweep count unavailable", "postgres", "sweep", err)
	}
	return int(n), nil
}
