package workers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueProcessUpload is the Redis list holding pending upload ids
const QueueProcessUpload = "queue:process_upload"

// ErrQueueEmpty is returned by Pop when no task arrived within the timeout
var ErrQueueEmpty = errors.New("queue is empty")

// Pusher is the enqueue side of the task queue. Split out so the dispatcher's
// retry behavior can be tested against an injected failure.
type Pusher interface {
	Push(ctx context.Context, queue string, payload string) error
}

// RedisQueue is a Redis list-backed task queue
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a queue from a Redis URL and verifies the connection
func NewRedisQueue(redisURL string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisQueue{client: client}, nil
}

// Push appends a payload to the queue
func (q *RedisQueue) Push(ctx context.Context, queue string, payload string) error {
	return q.client.LPush(ctx, queue, payload).Err()
}

// Pop blocks up to timeout for the next payload. Returns ErrQueueEmpty when
// nothing arrived.
func (q *RedisQueue) Pop(ctx context.Context, queue string, timeout time.Duration) (string, error) {
	vals, err := q.client.BRPop(ctx, timeout, queue).Result()
	if err == redis.Nil {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	// BRPop returns [queue, payload]
	return vals[1], nil
}

// Close releases the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
