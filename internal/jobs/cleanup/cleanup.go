package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type documentExpirer interface {
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job marks KYC documents older than the validity window as EXPIRED.
// Expired documents drop out of the payout eligibility check, so a vendor
// with stale evidence loses payouts on the next moderation pass rather
// than silently keeping them forever.
type Job struct {
	documents documentExpirer
	validity  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(documents documentExpirer, validity time.Duration, logger *zap.Logger) *Job {
	if validity <= 0 {
		validity = 365 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		documents: documents,
		validity:  validity,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.documents == nil {
		return nil
	}

	cutoff := j.now().Add(-j.validity)
	expired, err := j.documents.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expire stale documents: %w", err)
	}
	if expired > 0 {
		j.logger.Info("expired stale documents", zap.Int64("count", expired))
	}

	return nil
}

// Start runs the job on a fixed interval until the context is canceled.
// One failed pass is logged and retried on the next tick.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("document cleanup pass failed", zap.Error(err))
			}
		}
	}
}
