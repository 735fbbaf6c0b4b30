package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"sms-relay/internal/model"
	"sms-relay/internal/sender"
	"sms-relay/internal/store"
	"sms-relay/pkg/metrics"
	"sms-relay/pkg/tracing"

	"github.com/google/uuid"
)

// MaxMessageLen is the broadcast message limit in characters.
const MaxMessageLen = 200

var (
	ErrInvalidMessage = errors.New("message required (max 200 chars)")
	ErrSendFailed     = errors.New("broadcast delivery failed")
)

// Dispatcher fans one operator message out to every current subscriber.
// Sends run on a bounded worker pool and the dispatch joins on all of them
// before reporting; a failed send never cancels the rest, and already
// delivered messages are not rolled back.
type Dispatcher struct {
	store   store.Store
	sender  sender.Sender
	logger  *slog.Logger
	workers int
}

func NewDispatcher(st store.Store, snd sender.Sender, logger *slog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 16
	}
	return &Dispatcher{store: st, sender: snd, logger: logger, workers: workers}
}

// Broadcast validates the request, scans the subscriber set, and delivers the
// message to each number. The returned tally is valid even when err is
// ErrSendFailed; Failed says how many sends were lost.
func (d *Dispatcher) Broadcast(ctx context.Context, req model.BroadcastRequest) (model.BroadcastResult, error) {
	if req.Message == "" || utf8.RuneCountInString(req.Message) > MaxMessageLen {
		return model.BroadcastResult{}, ErrInvalidMessage
	}

	id := uuid.NewString()
	ctx = tracing.WithBroadcast(ctx, id)
	ctx, span := tracing.Start(ctx, "broadcast.dispatch",
		tracing.Attr("broadcast_id", id),
	)
	defer span.End()

	subs, err := d.store.All(ctx)
	if err != nil {
		return model.BroadcastResult{ID: id}, fmt.Errorf("scan subscribers: %w", err)
	}

	result := model.BroadcastResult{ID: id, Attempted: len(subs)}
	if len(subs) == 0 {
		metrics.BroadcastDone("success")
		return result, nil
	}

	timer := metrics.BroadcastTimer()
	defer timer.ObserveDuration()

	workers := d.workers
	if workers > len(subs) {
		workers = len(subs)
	}

	var succeeded, failed int64
	jobs := make(chan string)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for to := range jobs {
				if err := d.sender.Send(ctx, to, req.Message); err != nil {
					atomic.AddInt64(&failed, 1)
					metrics.BroadcastRecipient("error")
					d.logger.Error("broadcast send failed", "broadcast_id", id, "to", to, "err", err)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
				metrics.BroadcastRecipient("success")
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub.PhoneNumber
	}
	close(jobs)
	wg.Wait()

	result.Succeeded = int(atomic.LoadInt64(&succeeded))
	result.Failed = int(atomic.LoadInt64(&failed))

	if !result.OK() {
		metrics.BroadcastDone("error")
		d.logger.Error("broadcast finished with failures",
			"broadcast_id", id,
			"attempted", result.Attempted,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
		return result, ErrSendFailed
	}

	metrics.BroadcastDone("success")
	d.logger.Info("broadcast delivered", "broadcast_id", id, "sent_to", result.Attempted)
	return result, nil
}
