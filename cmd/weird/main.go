package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/totegamma/weird/client"
	"github.com/totegamma/weird/internal/config"
	"github.com/totegamma/weird/internal/infra/cache"
	"github.com/totegamma/weird/internal/infra/database"
	"github.com/totegamma/weird/internal/infra/gateway"
	"github.com/totegamma/weird/internal/infra/repository"
	"github.com/totegamma/weird/internal/present/rest"
	sessionmw "github.com/totegamma/weird/internal/present/rest/middleware"
	"github.com/totegamma/weird/internal/service"
	"github.com/totegamma/weird/internal/usecase"
	"github.com/totegamma/weird/leaf"
)

func setupTraceProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", "weird"))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.1))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func main() {
	configPath := flag.String("config", "/etc/weird/config.yaml", "path to the config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()), slog.String("module", "main"))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()), slog.String("module", "main"))
			}
		}()
	}

	var store leaf.Store
	if conf.Server.PostgresDsn != "" {
		db, err := database.NewPostgres(conf.Server.PostgresDsn)
		if err != nil {
			panic("failed to connect database")
		}
		err = database.MigratePostgres(db)
		if err != nil {
			panic("failed to migrate database")
		}
		store = repository.NewComponentRepository(db)
	} else {
		slog.Warn("no postgresDsn configured, profiles are kept in memory", slog.String("module", "main"))
		store = leaf.NewMemoryStore()
	}

	var links usecase.LinkCache = cache.NewLocalLinkCache(10 * time.Minute)
	if conf.Server.MemcachedAddr != "" {
		links = cache.NewMemcachedLinkCache(database.NewMemcached(conf.Server.MemcachedAddr))
	}

	var events usecase.ProfileEventPublisher
	var realtime rest.Realtime
	if conf.Server.RedisAddr != "" {
		rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			panic("failed to connect redis")
		}
		signal := service.NewSignalService(rdb)
		events = signal
		realtime = signal
	}

	cl, err := client.New(client.Options{
		UserAgent:            conf.HTTP.UserAgent,
		VerifyTimeout:        conf.HTTP.VerifyTimeout,
		ProxyURL:             conf.HTTP.Proxy,
		ProxyFromEnvironment: conf.HTTP.ProxyFromEnvironment,
		AuthServer:           conf.Instance.AuthServer,
	})
	if err != nil {
		panic(err)
	}

	challenges, err := service.NewChallengeService(conf.Instance.ChallengeSecret)
	if err != nil {
		panic(err)
	}
	sessions := service.NewSessionService(conf.Instance, cl)

	profileUsecase := usecase.NewProfileUsecase(store, conf.Instance, links, events)
	customDomainUsecase := usecase.NewCustomDomainUsecase(profileUsecase, challenges, gateway.NewDomainGateway(cl))

	handler := rest.NewHandler(profileUsecase, customDomainUsecase, realtime)

	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware("weird"))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler.RegisterRoutes(e, sessionmw.NewSessionMiddleware(sessions))

	slog.Info("starting server", slog.String("listen", conf.Server.Listen), slog.String("module", "main"))
	if err := e.Start(conf.Server.Listen); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()), slog.String("module", "main"))
	}
}
