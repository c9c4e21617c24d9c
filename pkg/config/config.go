package config

import (
	"clubhouse/pkg/client"
	"clubhouse/pkg/logger"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret  string
	AdminRoles []string
	StaffRoles []string

	CORSAllowedOrigins []string
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is believed
	// when keying rate limits. Empty means the direct peer is the client.
	TrustedProxies []string
	RedisAddr          string
	MetricsEnabled     bool

	DefaultWeekdayOpen  string
	DefaultWeekdayClose string
	DefaultWeekendOpen  string
	DefaultWeekendClose string

	// ResourcesURL points the schedules service at the resources API. When
	// empty it reads the Resources collection directly.
	ResourcesURL string

	Log    *logger.Logger
	Client *client.Client
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func Load(serviceName string) *Config {
	dotenvErr := godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret:  getEnvStr(EnvJWTSecret, ""),
		AdminRoles: getEnvList(EnvAdminRoles, DefaultAdminRoles),
		StaffRoles: getEnvList(EnvStaffRoles, DefaultStaffRoles),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),
		TrustedProxies:     getEnvList(EnvTrustedProxies, ""),
		RedisAddr:          getEnvStr(EnvRedisAddr, ""),
		MetricsEnabled:     getEnvBool(EnvMetricsEnabled, DefaultMetricsEnabled),

		DefaultWeekdayOpen:  getEnvStr(EnvWeekdayOpen, DefaultWeekdayOpen),
		DefaultWeekdayClose: getEnvStr(EnvWeekdayClose, DefaultWeekdayClose),
		DefaultWeekendOpen:  getEnvStr(EnvWeekendOpen, DefaultWeekendOpen),
		DefaultWeekendClose: getEnvStr(EnvWeekendClose, DefaultWeekendClose),

		ResourcesURL: strings.TrimRight(getEnvStr(EnvResourcesURL, ""), "/"),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		cfg.Log.Warn("Could not load .env file", "error", dotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional Redis client; it is a no-op when REDIS_ADDR is unset.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(cfg.AdminRoles) == 0 {
		errs = append(errs, "AdminRoles must contain at least one role")
	}

	windows := []struct {
		name       string
		open, shut string
	}{
		{"weekday", cfg.DefaultWeekdayOpen, cfg.DefaultWeekdayClose},
		{"weekend", cfg.DefaultWeekendOpen, cfg.DefaultWeekendClose},
	}
	for _, w := range windows {
		if !clockRegex.MatchString(w.open) || !clockRegex.MatchString(w.shut) {
			errs = append(errs, fmt.Sprintf("Default %s window must be in HH:MM format (00:00-23:59), got: %s-%s", w.name, w.open, w.shut))
			continue
		}
		if w.open >= w.shut {
			errs = append(errs, fmt.Sprintf("Default %s window must open before it closes, got: %s-%s", w.name, w.open, w.shut))
		}
	}

	for _, proxy := range cfg.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			errs = append(errs, fmt.Sprintf("TrustedProxies entries must be IPs or CIDRs, got: %s", proxy))
		}
	}

	if cfg.ResourcesURL != "" && !strings.HasPrefix(cfg.ResourcesURL, "http://") && !strings.HasPrefix(cfg.ResourcesURL, "https://") {
		errs = append(errs, fmt.Sprintf("ResourcesURL must start with 'http://' or 'https://', got: %s", cfg.ResourcesURL))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return errors.New(errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"admin_roles", cfg.AdminRoles,
		"staff_roles", cfg.StaffRoles,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"redis_enabled", cfg.RedisAddr != "",
		"metrics_enabled", cfg.MetricsEnabled,
		"default_weekday_window", cfg.DefaultWeekdayOpen+"-"+cfg.DefaultWeekdayClose,
		"default_weekend_window", cfg.DefaultWeekendOpen+"-"+cfg.DefaultWeekendClose,
		"resources_url", cfg.ResourcesURL,
		"trusted_proxies", cfg.TrustedProxies,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = MinPaginationLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
