package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
)

func TestNewPresenceMonitorDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	monitor := NewPresenceMonitor(&testhelpers.MonitorFacadeStub{}, 0, 0, 0, logger)
	if monitor.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", monitor.batchSize)
	}
	if monitor.pollInterval != time.Second {
		t.Fatalf("expected poll interval default to 1s, got %v", monitor.pollInterval)
	}
}

func TestPresenceMonitorActivatesSessions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	disputeID := uuid.New()
	facade := &testhelpers.MonitorFacadeStub{
		Pending: [][]model.Dispute{{{ID: disputeID, SessionStatus: model.SessionPending, CreatedAt: time.Now()}}},
	}
	monitor := NewPresenceMonitor(facade, 10*time.Millisecond, 1, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		activated := len(facade.Activations) > 0
		facade.Unlock()
		if activated {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for session activation")
		case <-time.After(10 * time.Millisecond):
		}
	}

	monitor.Stop()
	facade.Lock()
	defer facade.Unlock()
	if facade.Activations[0] != disputeID {
		t.Fatalf("expected activation for %s, got %s", disputeID, facade.Activations[0])
	}
}

func TestPresenceMonitorSurvivesErrors(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	calls := make(chan struct{}, 4)
	facade := &testhelpers.MonitorFacadeStub{
		PendingFn: func(context.Context, int) ([]model.Dispute, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil, errors.New("storage unavailable")
		},
	}
	monitor := NewPresenceMonitor(facade, 5*time.Millisecond, 1, 0, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-deadline:
			t.Fatal("timeout waiting for repeated sweeps")
		}
	}
	monitor.Stop()
}

func TestPresenceMonitorStopWithoutStart(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	monitor := NewPresenceMonitor(&testhelpers.MonitorFacadeStub{}, time.Second, 1, 0, logger)
	monitor.Stop()
}
