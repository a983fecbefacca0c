package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) (*Queue, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, "recap:jobs:test"), func() { mr.Close() }
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	q, cleanup := newTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	job := &AnalyzeJob{
		Username: "alice",
		Months:   []string{"2026/07"},
		Evals:    map[string][]int{"g1": {30, 150, -50}},
	}
	if err := q.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.ID == "" {
		t.Fatalf("Enqueue should assign an ID")
	}

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil || got.ID != job.ID || got.Username != "alice" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Evals["g1"]) != 3 {
		t.Fatalf("evals lost in transit: %+v", got.Evals)
	}
}

func TestDequeueOrderIsFIFO(t *testing.T) {
	q, cleanup := newTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		if err := q.Enqueue(ctx, &AnalyzeJob{Username: name}); err != nil {
			t.Fatalf("Enqueue %s: %v", name, err)
		}
	}
	if n, err := q.Len(ctx); err != nil || n != 2 {
		t.Fatalf("Len = %d, %v", n, err)
	}

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil || got == nil {
		t.Fatalf("Dequeue: %v %v", got, err)
	}
	if got.Username != "first" {
		t.Fatalf("fifo violated, got %q", got.Username)
	}
}

func TestEnqueueRejectsEmptyJob(t *testing.T) {
	q, cleanup := newTestQueue(t)
	defer cleanup()

	if err := q.Enqueue(context.Background(), &AnalyzeJob{}); !errors.Is(err, ErrEmptyJob) {
		t.Fatalf("err = %v, want ErrEmptyJob", err)
	}
	if err := q.Enqueue(context.Background(), nil); !errors.Is(err, ErrEmptyJob) {
		t.Fatalf("nil job err = %v, want ErrEmptyJob", err)
	}
}
