package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smb564/21-points/internal/config"
)

// IndexOp is the change an index job applies.
type IndexOp string

const (
	IndexOpSave   IndexOp = "save"
	IndexOpDelete IndexOp = "delete"
)

// IndexJob asks the index worker to bring one document in line with the database.
type IndexJob struct {
	Op IndexOp `json:"op"`
	ID int64   `json:"id"`
}

// IndexQueue is the Redis list feeding the index worker.
type IndexQueue struct {
	rdb *redis.Client
	key string
}

func NewIndexQueue(rdb *redis.Client) *IndexQueue {
	return &IndexQueue{rdb: rdb, key: config.Key.UserSettingsIndexQueue()}
}

func (q *IndexQueue) Enqueue(ctx context.Context, job IndexJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.key, payload).Err()
}

// Pop blocks up to timeout for the next job. It returns redis.Nil when the
// queue stayed empty.
func (q *IndexQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", redis.Nil
	}
	return result[1], nil
}

// TryPop returns the next job without blocking, or redis.Nil.
func (q *IndexQueue) TryPop(ctx context.Context) (string, error) {
	return q.rdb.LPop(ctx, q.key).Result()
}

// Requeue pushes a raw job back for a later attempt.
func (q *IndexQueue) Requeue(ctx context.Context, raw string) error {
	return q.rdb.RPush(ctx, q.key, raw).Err()
}

// DecodeIndexJob parses a raw queue entry.
func DecodeIndexJob(raw string) (IndexJob, error) {
	var job IndexJob
	err := json.Unmarshal([]byte(raw), &job)
	return job, err
}
