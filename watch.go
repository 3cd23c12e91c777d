package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/ssgreg/repeat"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/stakepool"
)

const (
	defaultSlotDuration = 400 * time.Millisecond
	// give the new epoch's rewards time to land before updating
	epochStartBuffer = 30 * time.Second
	// slot times drift, so re-check the epoch at least this often
	maxWatchInterval = time.Hour
)

// UpdateWatcher keeps a pool updated, running update once per epoch until its context is cancelled.
type UpdateWatcher struct {
	logger  *slog.Logger
	chain   sol.Chain
	client  *stakepool.Client
	pool    solana.PublicKey
	noMerge bool

	afterUpdate func()
}

func newUpdateWatcher(pool solana.PublicKey, noMerge bool) *UpdateWatcher {
	return &UpdateWatcher{
		logger:      App.logger,
		chain:       App.chain,
		client:      App.client,
		pool:        pool,
		noMerge:     noMerge,
		afterUpdate: App.writeMetrics,
	}
}

func (w *UpdateWatcher) start(ctx context.Context, wg *sync.WaitGroup) {
	misc.Infof(w.logger, "Watching stake pool %s for epoch changes", w.pool)

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.watch(ctx)
	}()
}

func (w *UpdateWatcher) watch(ctx context.Context) {
	defer misc.Infof(w.logger, "Exiting update watcher")
	for {
		w.update(ctx)
		wait := w.nextCheck(ctx)
		misc.Infof(w.logger, "next update check in %v", wait.Round(time.Second))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (w *UpdateWatcher) update(ctx context.Context) {
	err := repeat.Repeat(
		repeat.Fn(func() error {
			if err := w.client.Update(ctx, w.pool, false, w.noMerge); err != nil {
				return repeat.HintTemporary(err)
			}
			return nil
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(3),
		repeat.FnOnError(func(err error) error {
			misc.Warnf(w.logger, "retrying update of pool:%s, error:%v", w.pool, err)
			return err
		}),
		repeat.WithDelay(
			repeat.SetContext(ctx),
			repeat.SetContextHintStop(),
			(&repeat.FullJitterBackoffBuilder{
				BaseDelay: 5 * time.Second,
				MaxDelay:  30 * time.Second,
			}).Set(),
		),
	)
	if err != nil && ctx.Err() == nil {
		misc.Errorf(w.logger, "update of pool:%s failed, will retry next epoch, error:%v", w.pool, err)
	}
	if w.afterUpdate != nil {
		w.afterUpdate()
	}
}

func (w *UpdateWatcher) nextCheck(ctx context.Context) time.Duration {
	info, err := w.chain.EpochInfo(ctx)
	if err != nil {
		misc.Warnf(w.logger, "unable to fetch epoch info, error:%v", err)
		return time.Minute
	}
	misc.Debugf(w.logger, "epoch:%d, slot %d of %d", info.Epoch, info.SlotIndex, info.SlotsInEpoch)
	return durationToNextEpoch(info, defaultSlotDuration)
}

// durationToNextEpoch estimates how long until the epoch after info starts, plus a buffer, capped
// at maxWatchInterval.
func durationToNextEpoch(info sol.EpochInfo, slotDuration time.Duration) time.Duration {
	wait := time.Duration(info.SlotsRemaining())*slotDuration + epochStartBuffer
	return min(wait, maxWatchInterval)
}

func runUpdateWatch(ctx context.Context, pool solana.PublicKey, noMerge bool) error {
	return runUntilStopped(ctx, App.logger, newUpdateWatcher(pool, noMerge))
}

// runUntilStopped runs the watcher until SIGINT, SIGTERM or cancellation of ctx, then waits for it
// to finish.
func runUntilStopped(ctx context.Context, logger *slog.Logger, w *UpdateWatcher) error {
	var wg sync.WaitGroup

	// SIGINT and SIGTERM stop the watcher gracefully.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.start(ctx, &wg)

	select {
	case sig := <-sigc:
		misc.Infof(logger, "exiting (%v)", sig)
	case <-ctx.Done():
		misc.Infof(logger, "exiting (%v)", ctx.Err())
	}

	// Send cancellation signal to the goroutines.
	cancel()
	misc.Infof(logger, "waiting on background tasks..")
	wg.Wait()

	misc.Infof(logger, "exited")
	return nil
}
