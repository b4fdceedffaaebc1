package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

const defaultPurgeInterval = 5 * time.Minute

// PurgeExpiredTokens sweeps every namespace in two phases: collect and drop
// expired tokens under the shard lock, then issue durable deletions with no
// lock held. Safe to run concurrently with issuance and validation; a failed
// durable delete is reported and retried on the next cycle. Returns the
// number of records removed from the cache.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int, error) {
	now := s.now()
	total := 0
	var lastErr error
	for _, kind := range domain.AllTokenKinds {
		expired := s.store.SnapshotExpired(kind, now)
		removed := s.store.RemoveBatch(kind, expired)
		total += len(removed)

		// Durable deletes happen with no lock held. Failures go on the
		// retry list for the next cycle; the cache entry is already gone,
		// so the record can never resurrect.
		toDelete := append(s.takePending(kind), removed...)
		for _, token := range toDelete {
			if err := s.adapter.DeleteByToken(ctx, kind, token); err != nil {
				s.deferDelete(kind, token)
				lastErr = err
			}
		}
	}
	// Tombstones older than this sweep are settled: their durable deletes
	// either landed or sit on the retry list, which keeps them alive.
	s.clearTombstones(now)
	if total > 0 {
		s.logEvent(EventTokensPurged, "", "", "success", "")
	}
	return total, lastErr
}

func (s *Service) takePending(kind domain.TokenKind) []string {
	s.pendingMu.Lock()
	tokens := s.pending[kind]
	delete(s.pending, kind)
	s.pendingMu.Unlock()
	return tokens
}

func (s *Service) deferDelete(kind domain.TokenKind, token string) {
	s.pendingMu.Lock()
	s.pending[kind] = append(s.pending[kind], token)
	s.pendingMu.Unlock()
}

// Purger drives the expiry sweep on a fixed interval, independent of request
// traffic.
type Purger struct {
	svc      *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewPurger builds the background purger.
func NewPurger(svc *Service, interval time.Duration, logger *zap.Logger) *Purger {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &Purger{svc: svc, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick. It blocks until ctx is
// cancelled.
func (p *Purger) Run(ctx context.Context) {
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Purger) sweep(ctx context.Context) {
	purged, err := p.svc.PurgeExpiredTokens(ctx)
	if err != nil {
		p.logger.Warn("token purge incomplete, will retry next cycle", zap.Error(err), zap.Int("purged", purged))
		return
	}
	if purged > 0 {
		p.logger.Info("purged expired tokens", zap.Int("purged", purged))
	}
}
