package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

func TestDurationToNextEpoch(t *testing.T) {
	testCases := []struct {
		name           string
		info           sol.EpochInfo
		slotDuration   time.Duration
		expectedDurMin float64
	}{
		{"start of epoch, capped", sol.EpochInfo{SlotIndex: 0, SlotsInEpoch: 432_000}, 400 * time.Millisecond, 60.0},
		{"last slot", sol.EpochInfo{SlotIndex: 431_999, SlotsInEpoch: 432_000}, 400 * time.Millisecond, 0.5 + 0.4/60},
		{"past the end", sol.EpochInfo{SlotIndex: 432_001, SlotsInEpoch: 432_000}, 400 * time.Millisecond, 0.5},
		{"10 minutes left", sol.EpochInfo{SlotIndex: 430_500, SlotsInEpoch: 432_000}, 400 * time.Millisecond, 10.5},
		{"30 minutes left", sol.EpochInfo{SlotIndex: 427_500, SlotsInEpoch: 432_000}, 400 * time.Millisecond, 30.5},
		{"slow slots", sol.EpochInfo{SlotIndex: 431_000, SlotsInEpoch: 432_000}, 600 * time.Millisecond, 10.5},
		{"short test epoch", sol.EpochInfo{SlotIndex: 10, SlotsInEpoch: 32}, 400 * time.Millisecond, 38.8 / 60},
		{"zero slot time", sol.EpochInfo{SlotIndex: 0, SlotsInEpoch: 32}, 0, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actualDur := durationToNextEpoch(tc.info, tc.slotDuration)
			assert.InDelta(t, tc.expectedDurMin, actualDur.Minutes(), 0.01,
				"case: %s, expected duration of around %f minutes, but got duration of %v", tc.name, tc.expectedDurMin, actualDur)
		})
	}
}

type epochChain struct {
	sol.Chain
	info sol.EpochInfo
	err  error
}

func (e epochChain) EpochInfo(context.Context) (sol.EpochInfo, error) {
	return e.info, e.err
}

func TestUpdateWatcherNextCheck(t *testing.T) {
	w := &UpdateWatcher{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	w.chain = epochChain{info: sol.EpochInfo{Epoch: 600, SlotIndex: 430_500, SlotsInEpoch: 432_000}}
	assert.Equal(t, 10*time.Minute+epochStartBuffer, w.nextCheck(context.Background()))

	w.chain = epochChain{err: errors.New("rpc down")}
	assert.Equal(t, time.Minute, w.nextCheck(context.Background()))
}

func TestRunUntilStoppedOnCancel(t *testing.T) {
	tp := newTestPool(t)
	tp.install(t)
	w := newUpdateWatcher(tp.address, false)
	w.chain = tp.chain
	updated := make(chan struct{}, 1)
	w.afterUpdate = func() {
		select {
		case updated <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runUntilStopped(ctx, App.logger, w)
	}()

	select {
	case <-updated:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never ran an update")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after its context was cancelled")
	}
	assert.Contains(t, tp.out.String(), "Update not required")
	assert.Empty(t, tp.chain.sent)
}
