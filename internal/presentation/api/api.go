// Package api assembles the HTTP surface: routing, middleware and the server
// lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/infrastructure/configs"
	"github.com/hilthontt/quorum/internal/infrastructure/metrics"
	"github.com/hilthontt/quorum/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/quorum/internal/presentation/handler/health"
	pollsHandler "github.com/hilthontt/quorum/internal/presentation/handler/polls"
	quizzesHandler "github.com/hilthontt/quorum/internal/presentation/handler/quizzes"
)

type Application struct {
	config        *configs.Config
	pollHandler   *pollsHandler.Handler
	quizHandler   *quizzesHandler.Handler
	healthHandler *healthHandler.Handler
	metrics       *metrics.Metrics
	logger        *zap.SugaredLogger
	ratelimiter   *ratelimiter.FixedWindow
}

func NewApplication(
	config *configs.Config,
	pollHandler *pollsHandler.Handler,
	quizHandler *quizzesHandler.Handler,
	healthHandler *healthHandler.Handler,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	rl *ratelimiter.FixedWindow,
) *Application {
	return &Application{
		config:        config,
		pollHandler:   pollHandler,
		quizHandler:   quizHandler,
		healthHandler: healthHandler,
		metrics:       m,
		logger:        logger,
		ratelimiter:   rl,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)

	if app.config.RateLimiter.Enabled {
		r.Use(app.rateLimiterMiddleware)
	}
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", app.pollHandler.CreatePollHandler)
			r.Post("/join", app.pollHandler.JoinPollHandler)
			r.Post("/rejoin", app.pollHandler.RejoinPollHandler)
			r.Get("/ws", app.pollHandler.ConnectHandler)
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", app.quizHandler.CreateQuizHandler)
			r.Post("/join", app.quizHandler.JoinQuizHandler)
			r.Post("/rejoin", app.quizHandler.RejoinQuizHandler)
			r.Get("/ws", app.quizHandler.ConnectHandler)
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return otelhttp.NewHandler(r, "quorum")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
