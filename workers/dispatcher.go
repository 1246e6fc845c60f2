package workers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
)

const (
	// DefaultEnqueueRetries is how many times a failed enqueue is retried
	DefaultEnqueueRetries = 3
	// DefaultEnqueueBackoff is the base delay between enqueue attempts; the
	// actual sleep scales linearly with the attempt number
	DefaultEnqueueBackoff = time.Second
)

// Dispatcher hands upload ids to the task queue. It retries enqueue failures
// only; task failures are the pipeline's concern.
type Dispatcher struct {
	pusher  Pusher
	retries int
	backoff time.Duration
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(pusher Pusher) *Dispatcher {
	return &Dispatcher{
		pusher:  pusher,
		retries: DefaultEnqueueRetries,
		backoff: DefaultEnqueueBackoff,
	}
}

// EnqueueProcessUpload enqueues an upload for processing with linear backoff
// on transient push failures, raising the last error after exhaustion
func (d *Dispatcher) EnqueueProcessUpload(ctx context.Context, uploadID uint) error {
	payload := strconv.FormatUint(uint64(uploadID), 10)

	attempt := 0
	for {
		err := d.pusher.Push(ctx, QueueProcessUpload, payload)
		if err == nil {
			return nil
		}

		attempt++
		log.Printf("Dispatcher: failed to enqueue upload %d (attempt %d/%d): %v", uploadID, attempt, d.retries, err)
		if attempt > d.retries {
			return fmt.Errorf("failed to enqueue upload %d after %d attempts: %w", uploadID, attempt, err)
		}

		select {
		case <-time.After(d.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
