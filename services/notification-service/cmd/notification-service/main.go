package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/agendou/libs/config"
	"github.com/md-rashed-zaman/agendou/libs/db"
	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/libs/kafkax"
	otelx "github.com/md-rashed-zaman/agendou/libs/otel"
	"github.com/md-rashed-zaman/agendou/libs/runtime"
	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
	"github.com/md-rashed-zaman/agendou/services/notification-service/internal/consumer"
	"github.com/md-rashed-zaman/agendou/services/notification-service/internal/delivery"
	"github.com/md-rashed-zaman/agendou/services/notification-service/internal/inbox"
	"github.com/md-rashed-zaman/agendou/services/notification-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	brokers := config.List("KAFKA_BROKERS", "")
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}
	checks := []runtime.ReadyCheck{{Name: "kafka", Check: kafkax.ReadyCheck(brokers)}}

	var recorder delivery.Recorder = delivery.LogRecorder{Logger: logger}
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: 4})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo := storage.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}
		recorder = repo
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}

	ttl := config.Duration("INBOX_TTL", inbox.DefaultTTL)
	var claims consumer.Inbox = inbox.NewMemory(ttl)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		claims = inbox.NewRedis(rdb, service+":inbox", ttl)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		logger.Warn("REDIS_ADDR not set; deduplication is per process")
	}

	wa := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       config.String("META_API_BASE_URL", whatsapp.DefaultBaseURL),
		PhoneNumberID: config.String("META_PHONE_NUMBER_ID", ""),
		AccessToken:   config.String("META_ACCESS_TOKEN", ""),
		Timeout:       config.Duration("META_TIMEOUT", 10*time.Second),
	})
	if !wa.Configured() {
		logger.Warn("whatsapp credentials missing; deliveries will be recorded as skipped")
	}

	reader := consumer.NewReader(consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", service),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", events.TopicNotifications),
	})
	handler := delivery.NewHandler(wa, recorder, logger)
	go consumer.New(logger, reader, claims, handler.Handle).Run(ctx)

	mux := runtime.NewBaseMuxWithReady(checks...)
	srv := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(httpx.Chain(mux,
			httpx.WithRequestID,
			httpx.WithAccessLog(logger),
		), "notification"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.RunHTTPServer(ctx, logger, srv, 10*time.Second)
}
