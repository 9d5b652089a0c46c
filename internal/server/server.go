package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vocaquiz/vocaquiz/internal/api"
	"github.com/vocaquiz/vocaquiz/internal/event"
	"github.com/vocaquiz/vocaquiz/internal/game"
	"github.com/vocaquiz/vocaquiz/internal/leaderboard"
	"github.com/vocaquiz/vocaquiz/internal/question"
	"github.com/vocaquiz/vocaquiz/internal/registry"
	"github.com/vocaquiz/vocaquiz/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Redis struct {
		Leaderboard struct {
			Addrs  []string
			Pass   string
			Prefix string
		}

		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}

	Session struct {
		MaxAgeHours       int
		SweepEveryMinutes int
	}

	Quiz struct {
		Seed int64
	}
}

// Default fills the zero-value knobs a config file may omit.
func Default() Config {
	var c Config
	c.HTTP.Port = 8080
	c.Session.MaxAgeHours = 24
	c.Session.SweepEveryMinutes = 10
	return c
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			leaderboard redis.UniversalClient
			pubsub      redis.UniversalClient
		}
	}

	service struct {
		registry    *registry.Registry
		generator   *question.Generator
		leaderboard *leaderboard.Service
	}

	metrics *telemetry.Metrics

	http      *http.Server
	stopSweep chan struct{}
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c, stopSweep: make(chan struct{})}

	s.eb = event.NewBus()
	s.metrics = telemetry.NewMetrics(prometheus.DefaultRegisterer)

	if err := s.initRedis(); err != nil {
		return nil, fmt.Errorf("server: init redis: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initRedis() error {
	connect := func(addrs []string, pass string) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    addrs,
			Password: pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.leaderboard, err = connect(s.c.Redis.Leaderboard.Addrs, s.c.Redis.Leaderboard.Pass)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	s.infra.redis.pubsub, err = connect(s.c.Redis.Pubsub.Addrs, s.c.Redis.Pubsub.Pass)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initService() {
	s.service.registry = registry.New(registry.Config{
		Clock: game.SystemClock(),
	})

	var rng *rand.Rand
	if s.c.Quiz.Seed != 0 {
		rng = rand.New(rand.NewSource(s.c.Quiz.Seed))
	}
	s.service.generator = question.NewGenerator(question.Config{Rand: rng})

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.leaderboard,
		Prefix:   s.c.Redis.Leaderboard.Prefix,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery(), telemetry.HTTPLogger())

	api.New(api.Config{
		Router:       e,
		EventBus:     s.eb,
		Registry:     s.service.registry,
		Generator:    s.service.generator,
		Leaderboard:  s.service.leaderboard,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
		Metrics:      s.metrics,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		s.sweepExpired(ctx)
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

// sweepExpired periodically removes sessions past their maximum age. The
// registry itself has no timer; this loop is its scheduler.
func (s *Server) sweepExpired(ctx context.Context) {
	interval := time.Duration(s.c.Session.SweepEveryMinutes) * time.Minute
	maxAge := time.Duration(s.c.Session.MaxAgeHours) * time.Hour

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.stopSweep:
			return
		case <-t.C:
			s.removeExpired(ctx, maxAge)
		}
	}
}

// removeExpired drops expired sessions from the registry and releases their
// redis leaderboard mirrors, which have no TTL of their own.
func (s *Server) removeExpired(ctx context.Context, maxAge time.Duration) {
	removed := s.service.registry.CleanupExpired(maxAge)
	if len(removed) == 0 {
		return
	}

	for _, code := range removed {
		if err := s.service.leaderboard.CloseSession(ctx, code); err != nil {
			slog.ErrorContext(ctx, "server: drop leaderboard mirror failed",
				"session", code,
				"error", err,
			)
		}
	}

	s.metrics.SessionsSwept(len(removed))
	slog.InfoContext(ctx, "server: expired sessions removed",
		"count", len(removed),
		"max_age", maxAge,
	)
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	close(s.stopSweep)

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	slog.InfoContext(ctx, "server: shutdown completed")
}
