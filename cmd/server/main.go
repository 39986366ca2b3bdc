package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/d60-Lab/inkwell/docs"
	"github.com/d60-Lab/inkwell/internal/api/handler"
	"github.com/d60-Lab/inkwell/internal/api/router"
	"github.com/d60-Lab/inkwell/internal/cache"
	"github.com/d60-Lab/inkwell/internal/config"
	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
	"github.com/d60-Lab/inkwell/internal/search"
	"github.com/d60-Lab/inkwell/internal/service"
	"github.com/d60-Lab/inkwell/pkg/logger"
)

// @title inkwell API
// @version 1.0
// @description 博客发布平台:文章、分类、评论与可见性控制
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Otel.Enabled {
		shutdown, err := initTracer(cfg.Otel.Endpoint)
		if err != nil {
			logger.Warn("otel init failed", zap.Error(err))
		} else {
			defer shutdown(context.Background())
		}
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Category{},
		&model.PostCategory{},
		&model.Comment{},
	); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		return
	}

	var postCache *cache.PostCache
	if cfg.Redis.Enabled {
		cli := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		postCache = cache.NewPostCache(cli, cfg.Redis.TTL())
	}

	var idx *search.Index
	var indexer *service.SearchIndexer
	var stopIndexer func(context.Context) error
	if cfg.Elasticsearch.Enabled {
		idx, err = search.New(cfg.Elasticsearch.Addr, cfg.Elasticsearch.Index)
		if err != nil {
			logger.Error("elasticsearch init failed", zap.Error(err))
			return
		}
		// 索引已存在时 ES 返回 400，忽略
		_ = idx.EnsureIndex(context.Background())
		indexer = service.NewSearchIndexer(idx, 4096)
		stopIndexer = indexer.Start(2)
	}

	postRepo := repository.NewPostRepository(db)
	postCatRepo := repository.NewPostCategoryRepository(db)
	catRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	h := handler.New(
		service.NewAuthService(userRepo, cfg.JWT),
		service.NewPostService(db, postRepo, postCatRepo, catRepo, userRepo, postCache, indexer),
		service.NewCategoryService(db, catRepo),
		service.NewCommentService(commentRepo, postRepo, userRepo),
		idx,
	)

	engine := router.Setup(cfg, h)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if stopIndexer != nil {
		_ = stopIndexer(shutdownCtx)
	}
}

// openDB 按驱动打开数据库；TranslateError 让唯一键冲突映射为 gorm.ErrDuplicatedKey
func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func initTracer(endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
