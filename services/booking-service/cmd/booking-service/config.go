package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agendou/libs/config"
	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
)

type appConfig struct {
	Service     string
	Port        string
	GRPCPort    string
	DatabaseURL string
	Location    *time.Location
	SlotStep    int

	AdminSecret string
	CORSOrigins []string
	RedisAddr   string
	RateLimit   int

	KafkaBrokers []string
	KafkaTopic   string
	NotifyMode   string
	WhatsApp     whatsapp.Config

	DigestCron string
	SeedDemo   bool
}

func loadConfig() (appConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return appConfig{}, err
	}
	port, err := config.Port("PORT", "8080")
	if err != nil {
		return appConfig{}, err
	}
	grpcPort, err := config.Port("GRPC_PORT", "9090")
	if err != nil {
		return appConfig{}, err
	}
	tz := config.String("BUSINESS_TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return appConfig{}, fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}

	cfg := appConfig{
		Service:      config.String("SERVICE_NAME", "booking-service"),
		Port:         port,
		GRPCPort:     grpcPort,
		DatabaseURL:  config.String("DATABASE_URL", ""),
		Location:     loc,
		SlotStep:     config.Int("SLOT_STEP_MINUTES", 30),
		AdminSecret:  config.String("ADMIN_JWT_SECRET", ""),
		CORSOrigins:  config.List("CORS_ALLOWED_ORIGINS", ""),
		RedisAddr:    config.String("REDIS_ADDR", ""),
		RateLimit:    config.Int("RATE_LIMIT_PER_MINUTE", 120),
		KafkaBrokers: config.List("KAFKA_BROKERS", ""),
		KafkaTopic:   config.String("KAFKA_TOPIC", events.TopicNotifications),
		NotifyMode:   strings.ToLower(config.String("NOTIFY_MODE", "")),
		WhatsApp: whatsapp.Config{
			BaseURL:       config.String("META_API_BASE_URL", whatsapp.DefaultBaseURL),
			PhoneNumberID: config.String("META_PHONE_NUMBER_ID", ""),
			AccessToken:   config.String("META_ACCESS_TOKEN", ""),
			Timeout:       config.Duration("META_TIMEOUT", 10*time.Second),
		},
		DigestCron: config.String("DIGEST_CRON", "0 20 * * *"),
		SeedDemo:   config.Bool("SEED_DEMO_SERVICES", false),
	}
	if cfg.NotifyMode == "" {
		cfg.NotifyMode = defaultNotifyMode(cfg)
	}
	switch cfg.NotifyMode {
	case "whatsapp", "kafka", "log":
	default:
		return appConfig{}, fmt.Errorf("NOTIFY_MODE must be whatsapp, kafka or log (got %q)", cfg.NotifyMode)
	}
	if cfg.NotifyMode == "kafka" && len(cfg.KafkaBrokers) == 0 {
		return appConfig{}, fmt.Errorf("NOTIFY_MODE=kafka requires KAFKA_BROKERS")
	}
	return cfg, nil
}

// defaultNotifyMode prefers Kafka, then direct WhatsApp, then logging only.
func defaultNotifyMode(cfg appConfig) string {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		return "kafka"
	case cfg.WhatsApp.PhoneNumberID != "" && cfg.WhatsApp.AccessToken != "":
		return "whatsapp"
	default:
		return "log"
	}
}
