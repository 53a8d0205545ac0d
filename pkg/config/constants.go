package config

const (
	EnvPrefix = "PORTAL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PORTAL_APP_ENV"
	EnvPort     = "PORTAL_APP_PORT"
	EnvLogLevel = "PORTAL_LOG_LEVEL"

	EnvDBDSN  = "PORTAL_DB_DSN"
	EnvDBHost = "PORTAL_DB_HOST"
	EnvDBPort = "PORTAL_DB_PORT"
	EnvDBUser = "PORTAL_DB_USER"
	EnvDBPass = "PORTAL_DB_PASSWORD"
	EnvDBName = "PORTAL_DB_NAME"

	EnvRedisURL = "PORTAL_REDIS_URL"

	EnvJWTSecret               = "PORTAL_JWT_SECRET"
	EnvJWTIssuer               = "PORTAL_JWT_ISSUER"
	EnvJWTExpMins              = "PORTAL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "PORTAL_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite               = "PORTAL_USE_SQLITE"
	EnvIdempotencyTTL          = "PORTAL_IDEMPOTENCY_TTL"
	EnvAuthRateLimitLoginLimit = "PORTAL_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
