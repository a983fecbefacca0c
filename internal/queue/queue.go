// Package queue carries analysis jobs between the API side and this worker
// over a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrEmptyJob = errors.New("queue: job has no username")

// AnalyzeJob asks the worker to analyze one player's games. Months select
// which archives to fetch ("2024/05"); Evals carries engine evaluations per
// game link when the producer has them.
type AnalyzeJob struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Months   []string         `json:"months,omitempty"`
	Evals    map[string][]int `json:"evals,omitempty"`
}

type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, key string) *Queue {
	if strings.TrimSpace(key) == "" {
		key = "recap:jobs"
	}
	return &Queue{rdb: rdb, key: key}
}

// Enqueue pushes a job onto the queue, assigning an ID when absent.
func (q *Queue) Enqueue(ctx context.Context, job *AnalyzeJob) error {
	if job == nil || strings.TrimSpace(job.Username) == "" {
		return ErrEmptyJob
	}
	if strings.TrimSpace(job.ID) == "" {
		job.ID = uuid.NewString()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, raw).Err()
}

// Dequeue blocks up to timeout for the next job. Returns nil, nil when the
// wait times out with an empty queue.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*AnalyzeJob, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, errors.New("queue: unexpected brpop reply")
	}
	var job AnalyzeJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Len reports the number of waiting jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
