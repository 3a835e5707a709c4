package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"barefoot/config"
	"barefoot/internal/adapter/in/grpcapi"
	"barefoot/internal/adapter/in/httpapi"
	memcache "barefoot/internal/adapter/out/cache/inmemory"
	"barefoot/internal/adapter/out/cache/rediscache"
	eventbus "barefoot/internal/adapter/out/events/inmemory"
	"barefoot/internal/adapter/out/events/natsevents"
	"barefoot/internal/adapter/out/imagestore"
	"barefoot/internal/adapter/out/security"
	memstore "barefoot/internal/adapter/out/storage/inmemory"
	pgstore "barefoot/internal/adapter/out/storage/postgres"
	"barefoot/internal/service"
	"barefoot/pkg/logger"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/exaring/otelpgx"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	imagesURLPrefix   = "images"
	pingTimeout       = 5 * time.Second
	natsClientName    = "barefoot"
	otelHTTPOperation = "barefoot.http"
)

type App struct {
	cfg     config.Config
	srv     *http.Server
	grpcSrv *grpc.Server
	pool    *pgxpool.Pool
	rdb     redis.UniversalClient
	nc      *nats.Conn
	tp      *sdktrace.TracerProvider
}

func NewApp(ctx context.Context, cfg config.Config) (_ *App, err error) {
	log := logger.FromContext(ctx)
	a := &App{cfg: cfg}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	if a.tp, err = initTracer(ctx, cfg); err != nil {
		return nil, err
	}

	var (
		postStorage service.PostStorage
		userStorage service.UserStorage
		postOpts    []service.PostServiceOption
	)

	switch cfg.StorageType {
	case config.StoragePostgres:
		if a.pool, err = OpenPostgres(ctx, cfg.Postgres); err != nil {
			return nil, err
		}
		postStorage = pgstore.NewPostStorage(a.pool, trmpgx.DefaultCtxGetter)
		userStorage = pgstore.NewUserStorage(a.pool, trmpgx.DefaultCtxGetter)
		postOpts = append(postOpts, service.WithTxManager(manager.Must(trmpgx.NewDefaultFactory(a.pool))))

	default:
		postStorage = memstore.NewPostStorage()
		userStorage = memstore.NewUserStorage()
	}

	if cfg.Redis.Addr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err = redisotel.InstrumentTracing(a.rdb); err != nil {
			return nil, fmt.Errorf("redis tracing: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err = a.rdb.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		postOpts = append(postOpts, service.WithListCache(rediscache.NewPostListCache(a.rdb, cfg.Redis.CacheTTL)))
	} else {
		postOpts = append(postOpts, service.WithListCache(memcache.NewPostListCache(cfg.Redis.CacheTTL)))
	}

	bus := eventbus.New(0)
	postOpts = append(postOpts, service.WithEventPublisher(bus))

	if cfg.NATS.URL != "" {
		if a.nc, err = nats.Connect(cfg.NATS.URL, nats.Name(natsClientName)); err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		postOpts = append(postOpts, service.WithEventPublisher(natsevents.NewPublisher(a.nc, cfg.NATS.SubjectPrefix)))
	}

	images, err := imagestore.NewLocalStore(cfg.Images.Dir, imagesURLPrefix)
	if err != nil {
		return nil, err
	}
	postOpts = append(postOpts, service.WithImageStorage(images, cfg.Images.MaxBytes))

	jwtManager, err := security.NewJWTManager(security.JWTConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TTL,
	})
	if err != nil {
		return nil, err
	}

	postSvc := service.NewPostService(postStorage, postOpts...)
	authSvc := service.NewAuthService(userStorage, security.NewArgon2Hasher(nil), jwtManager, cfg.Auth.DevSecret)

	if cfg.Env == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := httpapi.NewHandler(postSvc, authSvc, jwtManager, cfg.Images.MaxBytes)
	router := httpapi.NewRouter(log, handler, httpapi.RouterConfig{ImagesDir: images.Root()})
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
	})

	addr := ":" + cfg.HTTP.Port
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(c.Handler(router), otelHTTPOperation),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.GRPC.Port != "" {
		a.grpcSrv = grpcapi.NewGRPCServer(log, grpcapi.NewServer(postSvc, bus), jwtManager,
			grpc.StatsHandler(otelgrpc.NewServerHandler()),
		)
	}

	log.Info("app initialized",
		"addr", addr,
		"grpc_port", cfg.GRPC.Port,
		"storage", cfg.StorageType,
		"redis", cfg.Redis.Addr != "",
		"nats", cfg.NATS.URL != "",
	)
	return a, nil
}

// OpenPostgres connects a traced pool and checks the connection.
func OpenPostgres(ctx context.Context, pc config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(pc.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Run serves HTTP and gRPC until ctx is cancelled or a server fails.
func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.grpcSrv != nil {
		lis, err := net.Listen("tcp", ":"+a.cfg.GRPC.Port)
		if err != nil {
			a.shutdown(log)
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			log.Info("grpc server listening", "addr", lis.Addr().String())
			if err := a.grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		a.shutdown(log)
		return nil

	case err := <-errCh:
		a.shutdown(log)
		return err
	}
}

func (a *App) shutdown(log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if a.grpcSrv != nil {
		stopped := make(chan struct{})
		go func() {
			a.grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			a.grpcSrv.Stop()
		}
	}
	a.close(logger.WithLogger(ctx, log))
}

func (a *App) close(ctx context.Context) {
	log := logger.FromContext(ctx)

	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			log.Error("nats drain", "error", err)
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Error("redis close", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tp != nil {
		if err := a.tp.Shutdown(ctx); err != nil {
			log.Error("tracer shutdown", "error", err)
		}
	}
}
