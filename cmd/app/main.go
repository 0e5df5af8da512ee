package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/tasks-patch-api/internal/config"
	"github.com/BuzzLyutic/tasks-patch-api/internal/handler"
	"github.com/BuzzLyutic/tasks-patch-api/internal/repo"
	"github.com/BuzzLyutic/tasks-patch-api/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		fmt.Println(config.Usage())
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	taskRepo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open task store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeRepo()

	taskService := service.NewTaskService(taskRepo, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", taskHandler.Health)
	r.Route("/tasks", taskHandler.Routes)

	srv := http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// openRepository connects the configured backend. The returned func releases
// its resources.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repo.TaskRepository, func(), error) {
	backend, err := repo.ParseBackend(cfg.Store.Backend)
	if err != nil {
		return nil, nil, err
	}

	switch backend {
	case repo.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Dynamo.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Dynamo.Endpoint)
			}
		})
		logger.Info("Using DynamoDB",
			zap.String("table", cfg.Dynamo.TableName),
			zap.String("region", cfg.Dynamo.Region),
			zap.String("endpoint", cfg.Dynamo.Endpoint),
		)
		return repo.NewDynamoRepo(client, cfg.Dynamo.TableName), func() {}, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("Successfully connected to the Database!")
		return repo.NewPostgresRepo(pool), pool.Close, nil
	}
}
