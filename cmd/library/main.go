package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	authapp "github.com/wyfcoding/librarylending/internal/auth/application"
	authdomain "github.com/wyfcoding/librarylending/internal/auth/domain"
	authmysql "github.com/wyfcoding/librarylending/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/wyfcoding/librarylending/internal/auth/interfaces/http"
	catalogapp "github.com/wyfcoding/librarylending/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/librarylending/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/librarylending/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/librarylending/internal/catalog/interfaces/http"
	lendingapp "github.com/wyfcoding/librarylending/internal/lending/application"
	lendingdomain "github.com/wyfcoding/librarylending/internal/lending/domain"
	lendingmysql "github.com/wyfcoding/librarylending/internal/lending/infrastructure/persistence/mysql"
	lendinghttp "github.com/wyfcoding/librarylending/internal/lending/interfaces/http"
	patronapp "github.com/wyfcoding/librarylending/internal/patron/application"
	patrondomain "github.com/wyfcoding/librarylending/internal/patron/domain"
	patronmysql "github.com/wyfcoding/librarylending/internal/patron/infrastructure/persistence/mysql"
	patronhttp "github.com/wyfcoding/librarylending/internal/patron/interfaces/http"
	reportingapp "github.com/wyfcoding/librarylending/internal/reporting/application"
	reportingmysql "github.com/wyfcoding/librarylending/internal/reporting/infrastructure/persistence/mysql"
	reportinghttp "github.com/wyfcoding/librarylending/internal/reporting/interfaces/http"
	"github.com/wyfcoding/librarylending/pkg/cache"
	"github.com/wyfcoding/librarylending/pkg/config"
	"github.com/wyfcoding/librarylending/pkg/db"
	"github.com/wyfcoding/librarylending/pkg/logger"
	"github.com/wyfcoding/librarylending/pkg/metrics"
	"github.com/wyfcoding/librarylending/pkg/middleware"
	"github.com/wyfcoding/librarylending/pkg/ratelimit"
	"github.com/wyfcoding/librarylending/pkg/token"
)

var configPath = flag.String("config", "configs/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	ctx := context.Background()

	// 3. 指标
	m := metrics.New("lending")

	// 4. 数据库
	database, err := db.Init(cfg.Database)
	if err != nil {
		logger.Fatal(ctx, "failed to connect database", "error", err)
	}
	defer database.Close()

	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(
			&catalogdomain.Book{},
			&patrondomain.Borrower{},
			&lendingdomain.BorrowingRecord{},
			&authdomain.User{},
		); err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
		}
	}

	// 5. Redis（报表缓存与登录限流；不可用时降级为直连数据库、不限流）
	var redisCache *cache.RedisCache
	var limiter ratelimit.RateLimiter
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cfg.Redis)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, report cache and rate limiting disabled", "error", err)
		} else {
			defer redisCache.Close()
			limiter = ratelimit.NewRedisRateLimiter(redisCache.Client())
		}
	}

	// 6. 仓储
	bookRepo := catalogmysql.NewBookRepository(database)
	borrowerRepo := patronmysql.NewBorrowerRepository(database)
	ledgerRepo := lendingmysql.NewLedgerRepository(database)
	bookStore := lendingmysql.NewBookStore(database)
	borrowerStore := lendingmysql.NewBorrowerStore(database)
	historyRepo := reportingmysql.NewHistoryRepository(database)
	userRepo := authmysql.NewUserRepository(database)

	// 7. 应用服务
	tokens := token.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour, cfg.JWT.Issuer)
	authSvc := authapp.NewAuthService(userRepo, tokens)
	catalogSvc := catalogapp.NewCatalogService(bookRepo, ledgerRepo)
	patronSvc := patronapp.NewPatronService(borrowerRepo, ledgerRepo)
	lendingSvc := lendingapp.NewLendingService(ledgerRepo, bookStore, borrowerStore, m)
	reportingSvc := reportingapp.NewReportingService(historyRepo, redisCache, m)

	// 在借数量计入指标基线
	if open, err := ledgerRepo.CountOpen(ctx); err == nil {
		m.LoansActive.Set(float64(open))
	}

	// 8. 路由
	if cfg.Environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecovery(), middleware.GinLogging(), middleware.GinCORS(), middleware.GinMetrics(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	api := r.Group("/api/v1")

	var loginLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled && limiter != nil {
		loginLimit = middleware.RateLimit(limiter, ratelimit.Limit{
			Rate:   cfg.RateLimit.Rate,
			Burst:  cfg.RateLimit.Burst,
			Period: time.Duration(cfg.RateLimit.PeriodSeconds) * time.Second,
		}, middleware.ByClientIP("login"))
		authhttp.NewHandler(authSvc).RegisterRoutes(api, loginLimit)
	} else {
		authhttp.NewHandler(authSvc).RegisterRoutes(api)
	}

	authed := api.Group("", middleware.JWTAuth(tokens))
	cataloghttp.NewHandler(catalogSvc).RegisterRoutes(authed)
	patronhttp.NewHandler(patronSvc).RegisterRoutes(authed)
	lendinghttp.NewHandler(lendingSvc).RegisterRoutes(authed)
	reportinghttp.NewHandler(reportingSvc).RegisterRoutes(authed)

	// 9. 启动
	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g.Go(func() error {
		logger.Info(gctx, "HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsServer = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}

		g.Go(func() error {
			logger.Info(gctx, "metrics server starting", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "shutting down servers...")
		case <-gctx.Done():
			logger.Info(gctx, "context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}
