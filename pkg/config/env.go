package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret  = "JWT_SECRET"
	EnvAdminRoles = "ADMIN_ROLES"
	EnvStaffRoles = "STAFF_ROLES"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvTrustedProxies     = "TRUSTED_PROXIES"
	EnvRedisAddr          = "REDIS_ADDR"
	EnvMetricsEnabled     = "METRICS_ENABLED"

	EnvWeekdayOpen  = "DEFAULT_WEEKDAY_OPEN"
	EnvWeekdayClose = "DEFAULT_WEEKDAY_CLOSE"
	EnvWeekendOpen  = "DEFAULT_WEEKEND_OPEN"
	EnvWeekendClose = "DEFAULT_WEEKEND_CLOSE"

	EnvResourcesURL = "RESOURCES_URL"
)
