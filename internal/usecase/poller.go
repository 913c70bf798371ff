package usecase

import (
	"context"
	"sync"
	"time"
)

// PollHandle cancels a running poll loop. Stop is idempotent.
type PollHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *PollHandle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// StartPoller runs fn immediately and then on a fixed wall-clock
// schedule. Each run gets its own goroutine so a slow fetch never
// delays the next tick; overlapping runs are tolerated and the last
// arriving result wins at the consumer.
func StartPoller(interval time.Duration, fn func(ctx context.Context)) *PollHandle {
	h := &PollHandle{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		go fn(context.Background())
		for {
			select {
			case <-ticker.C:
				go fn(context.Background())
			case <-h.stop:
				return
			}
		}
	}()

	return h
}
