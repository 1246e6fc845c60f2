package workers

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"
)

// popTimeout bounds each blocking wait so workers notice cancellation
const popTimeout = 5 * time.Second

// Pipeline processes one upload end to end
type Pipeline interface {
	ProcessUpload(ctx context.Context, uploadID uint) error
}

// Worker consumes upload ids from the queue and runs the pipeline. Each
// consumed upload is an independent pipeline run; concurrency only exists
// across uploads, never inside one.
type Worker struct {
	queue       *RedisQueue
	pipeline    Pipeline
	concurrency int
}

// NewWorker creates a new worker pool
func NewWorker(queue *RedisQueue, pipeline Pipeline, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		pipeline:    pipeline,
		concurrency: concurrency,
	}
}

// Start launches the consumer goroutines and blocks until the context is
// cancelled and all of them have drained
func (w *Worker) Start(ctx context.Context) {
	log.Printf("Worker: starting %d consumer(s)", w.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.consume(ctx, id)
		}(i + 1)
	}
	wg.Wait()

	log.Println("Worker: all consumers stopped")
}

func (w *Worker) consume(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := w.queue.Pop(ctx, QueueProcessUpload, popTimeout)
		if err == ErrQueueEmpty {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Worker %d: queue pop failed: %v", id, err)
			time.Sleep(time.Second)
			continue
		}

		uploadID, err := strconv.ParseUint(payload, 10, 64)
		if err != nil {
			log.Printf("Worker %d: discarding malformed payload %q", id, payload)
			continue
		}

		if err := w.pipeline.ProcessUpload(ctx, uint(uploadID)); err != nil {
			// the pipeline already marked the upload failed; the error is
			// surfaced here for operator visibility
			log.Printf("Worker %d: upload %d failed: %v", id, uploadID, err)
		}
	}
}
