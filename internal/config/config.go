package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	StoreTimeout    time.Duration
	LogLevel        string
	LogFile         string
	SupportName     string
	CORSOrigins     []string

	Gateway Gateway
	Mail    Mail
	Notify  Notify
	Blob    Blob
	Cache   Cache
	Events  Events
}

// Gateway configures the payment processor client.
type Gateway struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Mail configures outgoing transactional email.
type Mail struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Notify configures the asynchronous notification dispatcher.
type Notify struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Blob configures S3 compatible storage for order files.
type Blob struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Cache configures the catalog cache backend.
type Cache struct {
	Driver   string
	TTL      time.Duration
	Addr     string
	Password string
	DB       int
}

// Events configures publishing of order lifecycle events.
type Events struct {
	Driver  string
	Brokers []string
	Topic   string
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenTTL        = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
	defaultStoreTimeout    = 5 * time.Second
	defaultLogLevel        = "info"
	defaultSupportName     = "Support Team"
	defaultGatewayURL      = "https://api.razorpay.com"
	defaultGatewayTimeout  = 10 * time.Second
	defaultMailDriver      = "log"
	defaultMailPort        = 587
	defaultMailFrom        = "ProWriters <no-reply@prowriters.local>"
	defaultNotifyWorkers   = 2
	defaultNotifyQueue     = 256
	defaultNotifyTimeout   = 15 * time.Second
	defaultBlobEndpoint    = "localhost:9000"
	defaultBlobBucket      = "order-files"
	defaultCacheDriver     = "noop"
	defaultCacheTTL        = 5 * time.Minute
	defaultEventsDriver    = "noop"
	defaultEventsTopic     = "order-events"
)

var loadEnvOnce sync.Once

// Load parses configuration from process flags and environment variables.
func Load() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads configuration from args and the environment. A .env file in the
// working directory is applied first when present; it never overrides
// variables that are already set.
func Parse(args []string) (*Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return load(args, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		JWTSecret:       getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:        getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		StoreTimeout:    getDuration(lookup, "STORE_TIMEOUT", defaultStoreTimeout),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),
		LogFile:         getString(lookup, "LOG_FILE", ""),
		SupportName:     getString(lookup, "SUPPORT_NAME", defaultSupportName),
		CORSOrigins:     getList(lookup, "CORS_ORIGINS"),
		Gateway: Gateway{
			BaseURL:   getString(lookup, "GATEWAY_BASE_URL", defaultGatewayURL),
			KeyID:     getString(lookup, "GATEWAY_KEY_ID", ""),
			KeySecret: getString(lookup, "GATEWAY_KEY_SECRET", ""),
			Timeout:   getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		},
		Mail: Mail{
			Driver:   getString(lookup, "MAIL_DRIVER", defaultMailDriver),
			Host:     getString(lookup, "MAIL_HOST", ""),
			Port:     getInt(lookup, "MAIL_PORT", defaultMailPort),
			Username: getString(lookup, "MAIL_USERNAME", ""),
			Password: getString(lookup, "MAIL_PASSWORD", ""),
			From:     getString(lookup, "MAIL_FROM", defaultMailFrom),
		},
		Notify: Notify{
			Workers:   getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
			QueueSize: getInt(lookup, "NOTIFY_QUEUE", defaultNotifyQueue),
			Timeout:   getDuration(lookup, "NOTIFY_TIMEOUT", defaultNotifyTimeout),
		},
		Blob: Blob{
			Endpoint:  getString(lookup, "BLOB_ENDPOINT", defaultBlobEndpoint),
			AccessKey: getString(lookup, "BLOB_ACCESS_KEY", ""),
			SecretKey: getString(lookup, "BLOB_SECRET_KEY", ""),
			Bucket:    getString(lookup, "BLOB_BUCKET", defaultBlobBucket),
			UseSSL:    getBool(lookup, "BLOB_USE_SSL", false),
		},
		Cache: Cache{
			Driver:   getString(lookup, "CACHE_DRIVER", defaultCacheDriver),
			TTL:      getDuration(lookup, "CACHE_TTL", defaultCacheTTL),
			Addr:     getString(lookup, "REDIS_ADDR", "127.0.0.1:6379"),
			Password: getString(lookup, "REDIS_PASSWORD", ""),
			DB:       getInt(lookup, "REDIS_DB", 0),
		},
		Events: Events{
			Driver:  getString(lookup, "EVENTS_DRIVER", defaultEventsDriver),
			Brokers: getList(lookup, "KAFKA_BROKERS"),
			Topic:   getString(lookup, "KAFKA_TOPIC", defaultEventsTopic),
		},
	}

	fs := flag.NewFlagSet("prowriters", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr  = cfg.Gateway.Timeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.Gateway.BaseURL, "g", cfg.Gateway.BaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.IntVar(&cfg.Notify.Workers, "notify-workers", cfg.Notify.Workers, "Number of concurrent notification workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment gateway request timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Gateway.Timeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = defaultGatewayTimeout
	}

	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = defaultNotifyWorkers
	}

	if cfg.Notify.QueueSize <= 0 {
		cfg.Notify.QueueSize = defaultNotifyQueue
	}

	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = defaultNotifyTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.Gateway.KeySecret == "" {
		return nil, fmt.Errorf("gateway key secret must be provided")
	}

	if cfg.Mail.Driver == "smtp" && cfg.Mail.Host == "" {
		return nil, fmt.Errorf("mail host must be provided for smtp driver")
	}

	if cfg.Events.Driver == "kafka" && len(cfg.Events.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers must be provided for kafka events driver")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
