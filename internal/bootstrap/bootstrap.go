// Package bootstrap 组装各上下文的依赖并构建 HTTP 路由
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	bapp "github.com/wyfcoding/stockinsight/internal/backtest/application"
	bdomain "github.com/wyfcoding/stockinsight/internal/backtest/domain"
	binfra "github.com/wyfcoding/stockinsight/internal/backtest/infrastructure"
	bhttp "github.com/wyfcoding/stockinsight/internal/backtest/interfaces/http"
	fapp "github.com/wyfcoding/stockinsight/internal/forecast/application"
	fdomain "github.com/wyfcoding/stockinsight/internal/forecast/domain"
	fcache "github.com/wyfcoding/stockinsight/internal/forecast/infrastructure/cache"
	fmysql "github.com/wyfcoding/stockinsight/internal/forecast/infrastructure/persistence/mysql"
	"github.com/wyfcoding/stockinsight/internal/forecast/infrastructure/series"
	fhttp "github.com/wyfcoding/stockinsight/internal/forecast/interfaces/http"
	mapp "github.com/wyfcoding/stockinsight/internal/marketdata/application"
	mmysql "github.com/wyfcoding/stockinsight/internal/marketdata/infrastructure/persistence/mysql"
	"github.com/wyfcoding/stockinsight/internal/marketdata/infrastructure/provider"
	mhttp "github.com/wyfcoding/stockinsight/internal/marketdata/interfaces/http"
	rapp "github.com/wyfcoding/stockinsight/internal/report/application"
	"github.com/wyfcoding/stockinsight/internal/report/infrastructure/render"
	"github.com/wyfcoding/stockinsight/internal/report/infrastructure/source"
	rhttp "github.com/wyfcoding/stockinsight/internal/report/interfaces/http"
	"github.com/wyfcoding/stockinsight/pkg/cache"
	"github.com/wyfcoding/stockinsight/pkg/config"
	"github.com/wyfcoding/stockinsight/pkg/db"
	"github.com/wyfcoding/stockinsight/pkg/metrics"
	"github.com/wyfcoding/stockinsight/pkg/middleware"
	"github.com/wyfcoding/stockinsight/pkg/mq"
	"github.com/wyfcoding/stockinsight/pkg/ratelimit"
)

// AppContext 应用上下文
type AppContext struct {
	Config    *config.Config
	DB        *db.DB
	Redis     *cache.RedisCache
	Publisher mq.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	Fetch    *mapp.FetchService
	Series   *mapp.SeriesService
	Predict  *fapp.PredictService
	Backtest *bapp.BacktestApplicationService
	Report   *rapp.ReportService

	BacktestDefaults bdomain.CrossoverParams
}

// NewAppContext 初始化存储、缓存、消息与各应用服务。返回的 cleanup 关闭所有连接。
// m 为 nil 时不采集指标。
func NewAppContext(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*AppContext, func(), error) {
	bootLog := logger.With("module", "bootstrap")

	defaults, err := backtestDefaults(cfg.Backtest)
	if err != nil {
		return nil, nil, err
	}

	// 1. 数据库
	database, err := db.Init(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := mmysql.AutoMigrate(database.DB); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("failed to migrate bars: %w", err)
		}
		if err := fmysql.AutoMigrate(database.DB); err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("failed to migrate predictions: %w", err)
		}
	}

	// 2. Redis（可选）
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cfg.Redis)
		if err != nil {
			_ = database.Close()
			return nil, nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	// 3. 事件发布
	publisher := mq.NewPublisher(cfg.Kafka)

	// 4. 依赖注入
	bars := mmysql.NewBarRepository(database.DB)
	predictions := fmysql.NewPredictedPriceRepository(database.DB)

	fetch := mapp.NewFetchService(provider.NewAlphaVantageClient(cfg.AlphaVantage), bars, publisher, m, logger)
	seriesSvc := mapp.NewSeriesService(bars, fetch, logger)

	var modelCache fdomain.ModelCache = fcache.NoopModelCache{}
	if redisCache != nil && cfg.Forecast.ModelCacheTTL > 0 {
		modelCache = fcache.NewRedisModelCache(redisCache, time.Duration(cfg.Forecast.ModelCacheTTL)*time.Second, logger)
	}
	predict := fapp.NewPredictService(series.NewMarketDataSource(seriesSvc), predictions, modelCache, publisher, m, logger, cfg.Forecast.HorizonDays)

	engine := bdomain.NewBacktestEngine(binfra.NewMarketDataRepository(seriesSvc))
	backtest := bapp.NewBacktestApplicationService(engine, m, logger)

	report := rapp.NewReportService(source.NewStoreSource(bars, predictions), render.NewPDFRenderer(), m, logger)

	cleanup := func() {
		bootLog.Info("shutting down...")
		if err := publisher.Close(); err != nil {
			bootLog.Error("failed to close publisher", "error", err)
		}
		if redisCache != nil {
			_ = redisCache.Close()
		}
		if err := database.Close(); err != nil {
			bootLog.Error("failed to close database", "error", err)
		}
	}

	bootLog.Info("application context ready",
		"driver", database.Driver(),
		"redis", redisCache != nil,
		"kafka", cfg.KafkaEnabled(),
	)

	return &AppContext{
		Config:           cfg,
		DB:               database,
		Redis:            redisCache,
		Publisher:        publisher,
		Metrics:          m,
		Logger:           logger,
		Fetch:            fetch,
		Series:           seriesSvc,
		Predict:          predict,
		Backtest:         backtest,
		Report:           report,
		BacktestDefaults: defaults,
	}, cleanup, nil
}

func backtestDefaults(cfg config.BacktestConfig) (bdomain.CrossoverParams, error) {
	params := bdomain.DefaultCrossoverParams()
	if cfg.InitialInvestment != "" {
		v, err := decimal.NewFromString(cfg.InitialInvestment)
		if err != nil {
			return params, fmt.Errorf("invalid backtest.initial_investment %q: %w", cfg.InitialInvestment, err)
		}
		params.InitialInvestment = v
	}
	if cfg.ShortWindow > 0 {
		params.ShortWindow = cfg.ShortWindow
	}
	if cfg.LongWindow > 0 {
		params.LongWindow = cfg.LongWindow
	}
	return params, nil
}

// NewRouter 注册中间件与全部业务路由。/health 与指标路径不受前缀影响。
func NewRouter(app *AppContext) *gin.Engine {
	cfg := app.Config
	r := gin.New()
	r.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
	)
	if cfg.Metrics.Enabled && app.Metrics != nil {
		r.Use(middleware.GinMetricsMiddleware(app.Metrics))
		r.GET(cfg.Metrics.Path, gin.WrapH(app.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if sqlDB, err := app.DB.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": cfg.ServiceName,
			"version": cfg.Version,
		})
	})

	api := r.Group("/" + strings.Trim(cfg.HTTP.Prefix, "/"))
	if cfg.RateLimit.Enabled && app.Redis != nil {
		api.Use(middleware.RateLimitMiddleware(ratelimit.NewRedisRateLimiter(app.Redis.GetClient()), cfg.RateLimit))
	}

	mhttp.NewMarketDataHandler(app.Fetch).RegisterRoutes(api)
	fhttp.NewForecastHandler(app.Predict).RegisterRoutes(api)
	bhttp.NewBacktestHandler(app.Backtest, app.BacktestDefaults).RegisterRoutes(api)
	rhttp.NewReportHandler(app.Report).RegisterRoutes(api)
	return r
}
