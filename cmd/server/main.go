package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analytics"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/tokenizer"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth/ratelimit"
	"github.com/avdeevsm/tfidf-analyzer/internal/collection"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
	"github.com/avdeevsm/tfidf-analyzer/internal/document"
	doccache "github.com/avdeevsm/tfidf-analyzer/internal/document/cache"
	dochandler "github.com/avdeevsm/tfidf-analyzer/internal/document/handler"
	"github.com/avdeevsm/tfidf-analyzer/internal/server"
	"github.com/avdeevsm/tfidf-analyzer/pkg/config"
	"github.com/avdeevsm/tfidf-analyzer/pkg/health"
	"github.com/avdeevsm/tfidf-analyzer/pkg/kafka"
	"github.com/avdeevsm/tfidf-analyzer/pkg/logger"
	"github.com/avdeevsm/tfidf-analyzer/pkg/metrics"
	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
	pkgredis "github.com/avdeevsm/tfidf-analyzer/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting tfidf analyzer", "port", cfg.Server.Port, "top_words", cfg.Analyzer.TopWords)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	var statsCache *doccache.StatsCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, statistics caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		statsCache = doccache.New(redisClient, cfg.Redis)
		slog.Info("statistics cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopWords := tokenizer.DefaultRussian()
	if len(cfg.Analyzer.ExtraStopWords) > 0 {
		extra, err := tokenizer.NewStopSet(cfg.Analyzer.ExtraStopWords)
		if err != nil {
			slog.Error("invalid extra stop words", "error", err)
			os.Exit(1)
		}
		stopWords = stopWords.Merge(extra)
	}

	corpusStore := corpus.NewPostgresStore(db)
	tfidfAnalyzer, err := analyzer.New(analyzer.Config{
		TopWords:  cfg.Analyzer.TopWords,
		StopWords: stopWords,
	}, corpusStore)
	if err != nil {
		slog.Error("invalid analyzer configuration", "error", err)
		os.Exit(1)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalysisEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalysisEvents)

	aggregator := analytics.NewAggregator(nil)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalysisEvents, analytics.HandleEvent(aggregator))
	aggregator.SetConsumer(consumer)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	repo := document.NewRepository(db)
	docService := document.NewService(repo, tfidfAnalyzer, corpusStore, statsCache, collector, m, cfg.Upload.MaxFileSize)

	authStore := auth.NewPostgresStore(db)
	authService, err := auth.NewService(authStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	collectionService := collection.NewService(collection.NewRepository(db), stopWords, tfidfAnalyzer.TopWords())

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	limiter := ratelimit.New(cfg.Auth.RequestsPerMinute, time.Minute)

	handler := server.New(server.Deps{
		Documents:      dochandler.New(docService, cfg.Upload.MaxFileSize),
		Collections:    collection.NewHandler(collectionService),
		Auth:           auth.NewHandler(authService),
		AuthService:    authService,
		Analytics:      analytics.NewHandler(aggregator),
		Health:         checker,
		Metrics:        m,
		Limiter:        limiter,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("tfidf analyzer listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("tfidf analyzer stopped")
}
