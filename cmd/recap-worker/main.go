package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-recap/internal/analysis"
	"github.com/park285/chess-recap/internal/chesscom"
	appcfg "github.com/park285/chess-recap/internal/config"
	"github.com/park285/chess-recap/internal/domain"
	"github.com/park285/chess-recap/internal/obslog"
	"github.com/park285/chess-recap/internal/queue"
	"github.com/park285/chess-recap/internal/store"
	"github.com/park285/chess-recap/internal/tagcat"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L().Named("worker")

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	rdb := redis.NewClient(redisOpts)

	repo, err := store.NewRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	cat, err := tagcat.New(cfg.TagOverrideDir)
	if err != nil {
		log.Fatalf("tag catalog error: %v", err)
	}

	jobs := queue.New(rdb, cfg.QueueKey)
	fetcher := chesscom.NewClient(cfg.ChessComBaseURL,
		chesscom.WithTimeout(time.Duration(cfg.HTTPTimeoutSec)*time.Second),
		chesscom.WithUserAgent(cfg.UserAgent),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollTimeout := time.Duration(cfg.PollTimeoutSec) * time.Second

	var wg sync.WaitGroup
	for i := 0; i < cfg.BatchWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wlog := logger.With(zap.Int("worker", id))
			for {
				job, err := jobs.Dequeue(ctx, pollTimeout)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					wlog.Warn("dequeue failed", zap.Error(err))
					continue
				}
				if job == nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				processJob(ctx, wlog, fetcher, repo, cat, job)
			}
		}(i)
	}

	logger.Info("worker started",
		zap.String("queue", cfg.QueueKey),
		zap.Int("workers", cfg.BatchWorkers))

	<-ctx.Done()
	wg.Wait()

	_ = rdb.Close()
	_ = repo.Close()
	logger.Info("worker stopped")
}

func processJob(ctx context.Context, logger *zap.Logger, fetcher *chesscom.Client, repo *store.Repository, cat *tagcat.Catalog, job *queue.AnalyzeJob) {
	jlog := logger.With(zap.String("job", job.ID), zap.String("username", job.Username))
	start := time.Now()

	var games []*domain.GameRecord
	for _, month := range job.Months {
		monthly, err := fetcher.MonthlyGames(ctx, job.Username, month)
		if err != nil {
			jlog.Error("fetch month failed", zap.String("month", month), zap.Error(err))
			continue
		}
		for i := range monthly {
			games = append(games, &monthly[i])
		}
	}
	if len(games) == 0 {
		jlog.Warn("no games fetched, skipping job")
		return
	}

	evals := make(map[string]*domain.GameEvals, len(job.Evals))
	for link, cps := range job.Evals {
		evals[link] = &domain.GameEvals{Link: link, Evals: cps}
	}

	result, err := analysis.AnalyzeBatch(job.Username, games, evals, cat)
	if err != nil {
		jlog.Error("analysis failed", zap.Error(err))
		return
	}

	if err := repo.SaveTags(ctx, job.Username, result.Tags); err != nil {
		jlog.Error("save tags failed", zap.Error(err))
	}
	if err := repo.SavePuzzles(ctx, job.Username, result.Puzzles); err != nil {
		jlog.Error("save puzzles failed", zap.Error(err))
	}
	if err := repo.SaveQuality(ctx, job.Username, result.Quality); err != nil {
		jlog.Error("save quality failed", zap.Error(err))
	}
	if err := repo.SaveFailures(ctx, job.Username, result.Failed); err != nil {
		jlog.Error("save failures failed", zap.Error(err))
	}

	jlog.Info("job done",
		zap.Int("games", len(games)),
		zap.Int("tagged", len(result.Tags)),
		zap.Int("puzzles", len(result.Puzzles)),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("took", time.Since(start)))
}
