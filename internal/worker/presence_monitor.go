package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// DisputeFacade exposes the subset of application functionality required by
// the presence monitor.
type DisputeFacade interface {
	PendingDisputeSessions(ctx context.Context, limit int) ([]model.Dispute, error)
	TryActivateDisputeSession(ctx context.Context, disputeID uuid.UUID) (bool, error)
}

// PresenceMonitor periodically re-evaluates pending mediation sessions so a
// session activates as soon as both parties are present, without requiring
// another client request. Activation itself is a single guarded update, so
// racing with request-path activation is harmless.
type PresenceMonitor struct {
	facade        DisputeFacade
	pollInterval  time.Duration
	batchSize     int
	abandonWindow time.Duration
	logger        *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPresenceMonitor constructs the presence monitor.
func NewPresenceMonitor(facade DisputeFacade, pollInterval time.Duration, batchSize int, abandonWindow time.Duration, logger *slog.Logger) *PresenceMonitor {
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &PresenceMonitor{
		facade:        facade,
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		abandonWindow: abandonWindow,
		logger:        logger,
	}
}

// Start launches background monitoring.
func (m *PresenceMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.loop(runCtx)
}

// Stop waits for the monitor to finish.
func (m *PresenceMonitor) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *PresenceMonitor) loop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *PresenceMonitor) sweep(ctx context.Context) {
	disputes, err := m.facade.PendingDisputeSessions(ctx, m.batchSize)
	if err != nil {
		m.logger.Error("fetch pending dispute sessions failed", slog.String("error", err.Error()))
		return
	}

	now := time.Now()
	for _, dispute := range disputes {
		select {
		case <-ctx.Done():
			return
		default:
		}

		activated, err := m.facade.TryActivateDisputeSession(ctx, dispute.ID)
		if err != nil {
			m.logger.Error("dispute session activation failed",
				slog.String("dispute_id", dispute.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if activated {
			m.logger.Info("dispute session activated", slog.String("dispute_id", dispute.ID.String()))
			continue
		}

		if m.abandonWindow > 0 && now.Sub(dispute.CreatedAt) > m.abandonWindow {
			m.logger.Warn("dispute session still pending past abandon window",
				slog.String("dispute_id", dispute.ID.String()),
				slog.Duration("age", now.Sub(dispute.CreatedAt)))
		}
	}
}
