package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"worldforge/backend/internal/events"
)

// SweepRepo is the minimal store capability needed by the sweeper.
type SweepRepo interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically hard-deletes expired refresh-token rows. Revoked but
// unexpired rows are kept so revocation stays observable until expiry.
type Sweeper struct {
	tokens   SweepRepo
	interval time.Duration
	producer events.Producer
	logger   *zap.Logger
}

// NewSweeper returns a Sweeper running DeleteExpired every interval.
func NewSweeper(tokens SweepRepo, interval time.Duration, producer events.Producer, logger *zap.Logger) *Sweeper {
	if producer == nil {
		producer = events.NopProducer{}
	}
	return &Sweeper{
		tokens:   tokens,
		interval: interval,
		producer: producer,
		logger:   logger.Named("token_sweeper"),
	}
}

// Run sweeps on the configured interval until ctx is canceled. Intended to
// run on its own goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("expired token sweep failed", zap.Error(err))
		return
	}
	if deleted == 0 {
		return
	}
	s.logger.Info("expired refresh tokens deleted", zap.Int64("count", deleted))
	if err := s.producer.Emit(ctx, events.Event{
		Type:       events.TypeTokensSwept,
		Count:      deleted,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("auth event emit failed", zap.String("type", events.TypeTokensSwept), zap.Error(err))
	}
}
