package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/blob"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/cache"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/catalog"
	eventadapter "github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/events"
	httpadapter "github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/http"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/metrics"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/postgres"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/security"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	health     *health.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewLogger(cfg Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)
	return logger
}

// NewRuntime wires storage, cache, identity, photo storage and the HTTP and
// gRPC servers. Optional dependencies fall back to in-process stand-ins.
func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)

	checklist, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	repos := postgres.NewRepositories(db)

	var closers []io.Closer
	var cacheStore ports.Cache
	var revocations ports.SessionRevocationStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		closers = append(closers, redisClient)
		cacheStore = cache.NewRedisCache(redisClient)
		revocations = cache.NewRedisSessionRevocationStore(redisClient)
	} else {
		logger.WarnContext(ctx, "REDIS_URL not set, using in-process cache",
			"module", "bootstrap", "layer", "runtime", "operation", "wire_cache", "outcome", "fallback")
		memory := cache.NewMemoryStore()
		cacheStore, revocations = memory, memory
	}

	var signer *security.JWTSigner
	if cfg.JWTSecret != "" {
		signer, err = security.NewJWTSigner(cfg.JWTIssuer, cfg.JWTSecret)
	} else {
		logger.WarnContext(ctx, "JWT_SECRET not set, sessions will not survive a restart",
			"module", "bootstrap", "layer", "runtime", "operation", "wire_identity", "outcome", "fallback")
		signer, err = security.NewEphemeralJWTSigner(cfg.JWTIssuer)
	}
	if err != nil {
		closeAll(closers)
		_ = sqlDB.Close()
		return nil, err
	}
	identity := security.NewLocalIdentityProvider(
		repos.Credentials,
		security.NewBcryptHasher(cfg.BcryptCost),
		signer,
		revocations,
		security.IdentityConfig{SessionTTL: cfg.SessionTTL},
	)
	unsubscribe := identity.OnSessionChange(func(event ports.SessionEvent, session ports.Session) {
		logger.Info("session changed",
			"module", "security",
			"layer", "adapter",
			"operation", "session_change",
			"outcome", "success",
			"event", string(event),
			"user_id", session.UserID,
			"session_id", session.SessionID,
		)
	})

	var photos ports.PhotoStorage
	if cfg.S3Bucket != "" {
		storage, s3Err := blob.NewS3PhotoStorage(ctx, blob.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			MaxPhotoBytes: cfg.MaxPhotoBytes,
		})
		if s3Err != nil {
			logger.WarnContext(ctx, "photo storage disabled",
				"module", "bootstrap", "layer", "runtime", "operation", "wire_photos", "outcome", "failure", "error", s3Err)
		} else {
			photos = storage
		}
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:     cfg.ServiceID,
			ProfileCacheTTL: cfg.ProfileCacheTTL,
			Access:          domain.NewAccessPolicy(cfg.AccessRoles),
		},
		Catalog:  checklist,
		Projects: repos.Projects,
		Reports:  repos.Reports,
		Profiles: repos.Profiles,
		Outbox:   repos.Outbox,
		Identity: identity,
		Photos:   photos,
		Cache:    cacheStore,
		Metrics:  metrics.NewRecorder(),
	})

	ready := func(ctx context.Context) error {
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
	handler := httpadapter.NewHandler(service, ready)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		unsubscribe()
		closeAll(closers)
		_ = sqlDB.Close()
		return nil, err
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, map[string]string{
			application.EventReportCompleted: cfg.KafkaTopicCompleted,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}
	}
	outbox := eventadapter.NewOutboxWorker(logger, repos.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxRetries)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		health:     healthSrv,
		outbox:     outbox,
		cleanupFn: func(context.Context) {
			unsubscribe()
			closeAll(closers)
			_ = sqlDB.Close()
		},
	}, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		r.logger.InfoContext(ctx, "http server listening", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	r.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return runErr
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.cleanupFn(context.Background())

	_ = r.grpcLis.Close()
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
