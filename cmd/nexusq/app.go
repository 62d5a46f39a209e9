package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"nexusq/internal/automation"
	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/dashboard"
	"nexusq/internal/events"
	"nexusq/internal/intake"
	"nexusq/internal/leads"
	"nexusq/internal/logger"
	"nexusq/internal/pipeline"
	"nexusq/internal/realtime"
	"nexusq/internal/systemhealth"
	"nexusq/pkg/bootstrap"
	"nexusq/pkg/circuitbreaker"
	"nexusq/pkg/health"
	"nexusq/pkg/metrics"
	"nexusq/pkg/middleware"
	"nexusq/pkg/ratelimit"
	"nexusq/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sqlx.DB
	redis          *redis.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider

	dispatcher *automation.Dispatcher
	realtime   *realtime.Manager
	hook       *dashboard.Hook
	limiter    *ratelimit.Limiter
	breakers   []*circuitbreaker.Wrapper
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.initServer()
	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis connection failed, continuing without Redis", "error", err)
		return nil
	}
	a.redis = rdb
	return nil
}

func (a *App) initDispatcher() error {
	cfg := a.Config.Automation

	filter, err := automation.NewFilter(cfg.Filter)
	if err != nil {
		return err
	}

	notifier := automation.NewWebhookNotifier(
		cfg.WebhookURL,
		tracing.NewHTTPClient(seconds(cfg.TimeoutSeconds)),
		a.breaker("automation-webhook"),
	)

	dispatcher, err := automation.NewDispatcher(cfg, notifier, a.Logger,
		automation.WithFilter(filter),
		automation.WithEventSink(a.Producer, a.Config.Broker.Kafka.EventsTopic),
	)
	if err != nil {
		return err
	}
	a.dispatcher = dispatcher
	return nil
}

func (a *App) initIntake() intake.Service {
	cfg := a.Config.Intake

	fanout := intake.NewFanout(cfg.WebhookURLs, tracing.NewHTTPClient(seconds(cfg.TimeoutSeconds)), a.Logger)

	var opts []intake.Option
	if cfg.Dedup.Enabled {
		if a.redis == nil {
			a.Logger.Warn("Intake deduplication enabled but Redis is not available, skipping")
		} else {
			claims := intake.NewBreakerClaimRepository(intake.NewRedisClaimRepository(a.redis), a.Config.CircuitBreaker)
			opts = append(opts, intake.WithGuard(intake.NewGuard(claims, cfg.Dedup, a.Logger)))
		}
	}

	return intake.NewService(fanout, cfg, a.Logger, opts...)
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	var ingest []gin.HandlerFunc
	if a.Config.RateLimit.Enabled {
		a.limiter = ratelimit.New(ratelimit.RateLimitConfig{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.RateLimit.MaxAge) * time.Second,
		})
		ingest = append(ingest, a.limiter.Middleware())
		a.Logger.Infow("Rate limiting enabled on ingestion routes",
			"rps", a.Config.RateLimit.RPS,
			"burst", a.Config.RateLimit.Burst,
		)
	}

	if err := a.initDispatcher(); err != nil {
		return fmt.Errorf("failed to initialize automation: %w", err)
	}

	eventsRepo := events.NewRepository(a.db)
	emitter := events.NewEmitter(a.db, eventsRepo, a.Logger, events.WithDispatcher(a.dispatcher))

	leadsRepo := leads.NewRepository(a.db)
	leadsSvc := leads.NewService(a.db, leadsRepo, emitter, a.Logger)

	pipelineRepo := pipeline.NewRepository(a.db)
	workflow := pipeline.NewHTTPWorkflowClient(
		a.Config.Pipeline.UpdateWebhookURL,
		tracing.NewHTTPClient(seconds(a.Config.Pipeline.TimeoutSeconds)),
		a.breaker("pipeline-workflow"),
	)
	pipelineSvc := pipeline.NewService(pipelineRepo, leadsRepo, workflow, a.Logger)

	if a.Config.Realtime.Enabled {
		a.realtime = realtime.NewManager(a.Config.Realtime.SubscriberBuffer, a.Logger)
	}
	a.hook = dashboard.NewHook(leadsRepo, eventsRepo, pipelineRepo, a.Config.Dashboard, a.realtime, a.Logger)

	leads.NewHandler(leadsSvc, a.Logger).RegisterRoutes(router, ingest...)
	events.NewHandler(emitter, a.Logger).RegisterRoutes(router)
	pipeline.NewHandler(pipelineSvc, a.Logger).RegisterRoutes(router)
	dashboard.NewHandler(a.hook, a.Logger).RegisterRoutes(router)
	intake.NewHandler(a.initIntake(), a.Logger).RegisterRoutes(router, ingest...)

	metrics.Register()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redis != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redis))
	}
	for _, cb := range a.breakers {
		healthRegistry.RegisterOptional(health.NewFuncChecker(cb.Name(), func(context.Context) error {
			if cb.IsOpen() {
				return fmt.Errorf("circuit breaker %s is open", cb.Name())
			}
			return nil
		}))
	}
	systemhealth.NewHandler(healthRegistry).RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() {
	// WriteTimeout defaults to zero so /api/v1/stream stays open.
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.realtime != nil {
		src := realtime.NewPQSource(a.Config.Database.Postgres.DSN(), a.Config.Realtime, a.Logger)
		g.Go(func() error {
			if err := a.realtime.Run(gCtx, src); err != nil {
				return fmt.Errorf("realtime error: %w", err)
			}
			return nil
		})
	}

	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.RunCleanup(gCtx)
			return nil
		})
	}

	a.hook.Start(gCtx)

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	return a.Base.Shutdown(shutdownCtx, func(ctx context.Context) []error {
		var errs []error

		// Closing the hook ends open event streams, which server.Shutdown would otherwise wait on.
		if a.hook != nil {
			a.hook.Close()
		}

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if a.realtime != nil {
			a.realtime.Close()
		}

		if a.dispatcher != nil {
			if err := a.dispatcher.Close(constants.ShutdownTimeout); err != nil {
				errs = append(errs, fmt.Errorf("automation shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(a.redis, a.db)...)
		return errs
	})
}

// breaker returns the named breaker, or nil when breakers are disabled.
func (a *App) breaker(name string) *circuitbreaker.Wrapper {
	cb := circuitbreaker.FromSettings(name, a.Config.CircuitBreaker)
	if cb != nil {
		a.breakers = append(a.breakers, cb)
	}
	return cb
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return constants.DefaultHTTPTimeout
	}
	return time.Duration(n) * time.Second
}
