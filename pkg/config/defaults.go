package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clubhouse"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAdminRoles = "super_admin"
	DefaultStaffRoles = "super_admin,admin,coach,staff"

	DefaultCORSAllowedOrigins = "*"
	DefaultMetricsEnabled     = true

	DefaultWeekdayOpen  = "08:00"
	DefaultWeekdayClose = "20:00"
	DefaultWeekendOpen  = "09:00"
	DefaultWeekendClose = "17:00"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)
