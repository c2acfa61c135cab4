package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/internal/authz"
	"github.com/Skotchmaster/emotion_diary/internal/clients/llm"
	"github.com/Skotchmaster/emotion_diary/internal/clients/sentiment"
	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/httpserver"
	"github.com/Skotchmaster/emotion_diary/internal/metrics"
	authmw "github.com/Skotchmaster/emotion_diary/internal/middleware/auth"
	"github.com/Skotchmaster/emotion_diary/internal/rate"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/search"
	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/pkg/config"
	"github.com/Skotchmaster/emotion_diary/pkg/db"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

func main() {
	cfg := config.Load(".env")

	logger, closeLog := newLogger(cfg)
	slog.SetDefault(logger)

	err := run(cfg, logger)
	if err != nil {
		logger.Error("server_exit", "error", err)
	}
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger logs to stdout, and also to a rotating file when LOG_FILE is set.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	if cfg.LogFile == "" {
		return logging.New(cfg.LogLevel), func() {}
	}
	l, c, err := logging.NewWithFile(cfg.LogLevel, logging.FileConfig{
		Filename:   cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	})
	if err != nil {
		l := logging.New(cfg.LogLevel)
		l.Warn("log_file_unavailable", "file", cfg.LogFile, "error", err)
		return l, func() {}
	}
	return l, func() { _ = c.Close() }
}

func run(cfg config.Config, logger *slog.Logger) error {
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustValidTokens(cfg.Tokens())

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close(gdb)

	if err := repo.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store := &repo.GormRepo{DB: gdb}

	issuer, err := tokens.NewIssuer(cfg.Tokens())
	if err != nil {
		return err
	}
	verifier, err := tokens.NewVerifier(cfg.Tokens())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metricsHandler, err := metrics.Register(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	limiter, closeLimiter := newLimiter(cfg, logger)
	defer closeLimiter()

	pub := newPublisher(cfg, logger)
	defer pub.Close()

	indexer := newIndexer(cfg, logger)

	theory := &service.TheoryService{
		LLM: llm.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.HTTPClientTimeout),
	}
	authMW := authmw.New(verifier, authz.New(store, authz.LogObserver{
		Record: metrics.ObserveAuthz,
	}))
	deps := &httpserver.Deps{
		Account: &httpserver.AccountHTTP{Svc: &service.AuthService{
			Repo: store, Issuer: issuer, Limiter: limiter, Events: pub,
		}},
		Diary: &httpserver.DiaryHTTP{Svc: &service.DiaryService{
			Repo:      store,
			Sentiment: sentiment.NewClient(cfg.SentimentURL, cfg.HTTPClientTimeout),
			Theory:    theory,
			Indexer:   indexer,
			Events:    pub,
		}, Auth: authMW},
		Tag:       &httpserver.TagHTTP{Svc: &service.TagService{Repo: store}},
		Chart:     &httpserver.ChartHTTP{Svc: &service.ChartService{Repo: store}},
		Knowledge: &httpserver.KnowledgeHTTP{Svc: service.NewKnowledgeService(store)},
		Theory:    &httpserver.TheoryHTTP{Svc: theory},
		Admin:     &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: store, Events: pub}},
		Auth:      authMW,
		Ready: func(ctx context.Context) error { return ping(ctx, gdb) },
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 90 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Pre(ecM.RemoveTrailingSlash())
	e.Use(httpserver.Common(logger)...)
	httpserver.Register(e, deps)

	metricsSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.MetricsPort),
		Handler:           metricsHandler,
		ReadHeaderTimeout: 3 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http_listen", "port", cfg.ServerPort)
		if err := e.Start(":" + strconv.Itoa(cfg.ServerPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("metrics_listen", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics_shutdown_failed", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("shutdown_complete")
	return err
}

func ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newLimiter(cfg config.Config, logger *slog.Logger) (rate.Limiter, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("rate_limiter", "backend", "memory")
		return rate.NewMemoryLimiter(cfg.LoginRateMax, cfg.LoginRateWindow), func() {}
	}

	client := rdb.NewClient(&rdb.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
	}
	logger.Info("rate_limiter", "backend", "redis", "addr", cfg.RedisAddr)
	return rate.NewRedisLimiter(client, cfg.ServiceName+":login", cfg.LoginRateMax, cfg.LoginRateWindow),
		func() { _ = client.Close() }
}

func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
		return events.Noop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], events.TopicUsers, events.TopicDiaries); err != nil {
		logger.Warn("ensure_topics_failed", "error", err)
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers)
}

func newIndexer(cfg config.Config, logger *slog.Logger) search.Indexer {
	if cfg.ESURL == "" {
		logger.Info("search_disabled", "reason", "ES_URL not set")
		return search.Noop{}
	}
	client, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		logger.Warn("search_unavailable", "url", cfg.ESURL, "error", err)
		return search.Noop{}
	}
	return search.NewES(client, cfg.ESIndex)
}
