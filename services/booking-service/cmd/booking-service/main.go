package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/agendou/libs/auth"
	"github.com/md-rashed-zaman/agendou/libs/db"
	"github.com/md-rashed-zaman/agendou/libs/grpcx"
	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/libs/kafkax"
	otelx "github.com/md-rashed-zaman/agendou/libs/otel"
	"github.com/md-rashed-zaman/agendou/libs/runtime"
	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/digest"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/grpcapi"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage/memory"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage/postgres"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.Service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var checks []runtime.ReadyCheck

	store, closeStore, dbCheck, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()
	if dbCheck != nil {
		checks = append(checks, *dbCheck)
	}

	sender, closeSender := newSender(cfg, logger)
	defer closeSender()
	if cfg.NotifyMode == "kafka" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}
	dispatcher := notify.NewDispatcher(sender, logger, notify.Options{})
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dispatcher.Shutdown(drainCtx); err != nil {
			logger.Warn("notification dispatcher shutdown", "err", err)
		}
	}()

	bookings := booking.NewService(store, dispatcher, logger, booking.Config{
		Location: cfg.Location,
		SlotStep: cfg.SlotStep,
	})

	job := digest.NewJob(store, dispatcher, logger, cfg.Location)
	scheduler, err := digest.Schedule(cfg.DigestCron, job, time.Minute)
	if err != nil {
		logger.Error("invalid DIGEST_CRON", "err", err)
		os.Exit(1)
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("daily agenda scheduled", "cron", cfg.DigestCron)
	}

	var limiter httpx.Limiter = httpx.NewMemoryLimiter(cfg.RateLimit, time.Minute)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = httpx.NewRedisLimiter(rdb, cfg.RateLimit, time.Minute, cfg.Service+":rl")
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	if cfg.AdminSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes will reject every request")
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(bookings, logger).Register(mux, handlers.Routes{
		Public: []httpx.Middleware{httpx.WithRateLimit(limiter, logger, true)},
		Admin:  []httpx.Middleware{auth.RequireRole(cfg.AdminSecret, auth.RoleAdmin)},
	})
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(cfg.CORSOrigins)),
		httpx.WithBodyLimit(1<<20),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(httpHandler, "booking"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpc.NewServer(grpcx.ServerOptions(logger)...)
	grpcapi.Register(grpcSrv, grpcapi.NewServer(bookings, logger))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	go serveGRPC(ctx, logger, grpcSrv, ":"+cfg.GRPCPort)

	runtime.RunHTTPServer(ctx, logger, srv, 10*time.Second)
	healthSrv.Shutdown()
}

func openStore(ctx context.Context, cfg appConfig, logger *slog.Logger) (storage.Store, func(), *runtime.ReadyCheck, error) {
	var (
		store   storage.Store
		closeFn = func() {}
		check   *runtime.ReadyCheck
	)
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory storage")
		store = memory.New()
	} else {
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{})
		if err != nil {
			return nil, nil, nil, err
		}
		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store, closeFn = pg, pool.Close
		check = &runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)}
	}

	if cfg.SeedDemo {
		n, err := storage.SeedServices(ctx, store, time.Now().UTC())
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		if n > 0 {
			logger.Info("seeded demo services", "count", n)
		}
	}
	return store, closeFn, check, nil
}

func newSender(cfg appConfig, logger *slog.Logger) (notify.Sender, func()) {
	switch cfg.NotifyMode {
	case "kafka":
		w := kafkax.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("notifications via kafka", "topic", cfg.KafkaTopic)
		return notify.NewKafkaSender(w), func() { _ = w.Close() }
	case "whatsapp":
		logger.Info("notifications via whatsapp")
		return notify.NewWhatsAppSender(whatsapp.NewClient(cfg.WhatsApp), logger), func() {}
	default:
		logger.Info("notifications logged only")
		return notify.NewLogSender(logger), func() {}
	}
}

func serveGRPC(ctx context.Context, logger *slog.Logger, srv *grpc.Server, addr string) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("grpc listen failed", "addr", addr, "err", err)
		return
	}
	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()
	logger.Info("grpc server starting", "addr", addr)
	if err := srv.Serve(lis); err != nil {
		logger.Error("grpc server error", "err", err)
	}
}
