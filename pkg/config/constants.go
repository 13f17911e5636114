package config

const (
	EnvPrefix = "EASYUK"

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "EASYUK_APP_ENV"
	EnvPort       = "EASYUK_APP_PORT"
	EnvDBDSN      = "EASYUK_DB_DSN"
	EnvDBHost     = "EASYUK_DB_HOST"
	EnvDBUser     = "EASYUK_DB_USER"
	EnvDBName     = "EASYUK_DB_NAME"
	EnvRedisURL   = "EASYUK_REDIS_URL"
	EnvJWTSecret  = "EASYUK_JWT_SECRET"
	EnvJWTIssuer  = "EASYUK_JWT_ISSUER"
	EnvJWTExpMins = "EASYUK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
