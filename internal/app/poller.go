package app

import (
	"context"
	"time"

	"github.com/restackd/restack/internal/logging"
	"github.com/restackd/restack/internal/stackd"
	"github.com/restackd/restack/internal/state"
)

const (
	defaultPollInterval = 3 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the daemon is unreachable. Confirm-fetch
// requests from the store (a redeploy just finished) trigger an immediate
// refresh. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client stackd.API, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			if err := refresh(ctx, store, client); err != nil {
				failures++
			} else {
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-store.ConfirmRequests():
				timer.Stop()
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client stackd.API) error {
	asOf := store.Seq()
	stacks, err := client.FetchStacks(ctx)
	if err != nil {
		store.RecordError(err)
		logging.WithComponent("poller").Warn("stack fetch failed", "error", err)
		return err
	}
	store.ReplaceAll(stacks, asOf)
	return nil
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff. Zero failures yields the base interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
