// Package dedup records successful posts so the same handle and subject are
// posted at most once per Eastern calendar day.
package dedup

import (
	"context"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/util"
	"go.uber.org/zap"
)

// Key identifies one (handle, subject, day) slot. Handle and subject are
// compared case-insensitively.
type Key struct {
	Handle  string
	Subject string
	Day     string
}

func NewKey(handle, subject string, at time.Time) Key {
	return Key{
		Handle:  util.Normalize(strings.TrimLeft(strings.TrimSpace(handle), "@")),
		Subject: util.Normalize(subject),
		Day:     util.DayET(at),
	}
}

func (k Key) String() string {
	return k.Handle + "|" + k.Subject + "|" + k.Day
}

type Entry struct {
	Key      Key
	PostedAt time.Time
	TweetID  string
}

// Ledger is the server-side post record. Seen and Mark are separate calls; the
// caller checks, posts, then marks.
type Ledger interface {
	Seen(ctx context.Context, key Key) (bool, error)
	Mark(ctx context.Context, entry Entry) error
	// Sweep drops entries posted before now minus the retention window and
	// returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, ledger Ledger, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := ledger.Sweep(ctx, now)
			if err != nil {
				logger.Warn("Post ledger sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Post ledger swept", zap.Int("removed", removed))
			}
		}
	}
}
