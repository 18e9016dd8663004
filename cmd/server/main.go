package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/hilthontt/quorum/internal/gateway"
	"github.com/hilthontt/quorum/internal/infrastructure/configs"
	"github.com/hilthontt/quorum/internal/infrastructure/logging"
	"github.com/hilthontt/quorum/internal/infrastructure/metrics"
	"github.com/hilthontt/quorum/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
	"github.com/hilthontt/quorum/internal/infrastructure/token"
	"github.com/hilthontt/quorum/internal/infrastructure/tracing"
	"github.com/hilthontt/quorum/internal/presentation/api"
	"github.com/hilthontt/quorum/internal/presentation/handler/health"
	"github.com/hilthontt/quorum/internal/presentation/handler/polls"
	"github.com/hilthontt/quorum/internal/presentation/handler/quizzes"
	"github.com/hilthontt/quorum/internal/repository"
	"github.com/hilthontt/quorum/internal/service"
)

func main() {
	configPath := configs.DeterminePath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.Tracing.Enabled {
		sh, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Fatalw("failed to initialize tracer", "error", err)
		}
		defer sh(context.Background())
	}

	db, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	}, logger)
	if err != nil {
		logger.Fatalw("failed to open store", "error", err)
	}
	defer db.Close()

	issuer := token.NewIssuer(cfg.Token.Secret, cfg.Token.TTL)

	pollRepository := repository.NewPollRepository(db, cfg.Rooms.TTL, logger)
	quizRepository := repository.NewQuizRepository(db, cfg.Rooms.TTL, logger)

	pollService := service.NewPollService(pollRepository, issuer, cfg.Rooms.PollLockOnStart, logger)
	quizService := service.NewQuizService(quizRepository, issuer, cfg.Rooms.QuizLockOnStart, logger)

	m := metrics.New()

	hub := gateway.NewHub(logger)
	pollRouter := gateway.NewPollRouter(hub, pollService, m, logger)
	quizRouter := gateway.NewQuizRouter(hub, quizService, m, logger)

	pollHandler := polls.NewHandler(pollService, issuer, hub, pollRouter, m, logger)
	quizHandler := quizzes.NewHandler(quizService, issuer, hub, quizRouter, m, logger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.NewFixedWindow(cfg.RateLimiter.Limit, cfg.RateLimiter.Window)
	defer rl.Close()

	app := api.NewApplication(cfg, pollHandler, quizHandler, healthHandler, m, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
