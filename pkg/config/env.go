package config

const (
	EnvPrefix = "LISTDIST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "LISTDIST_APP_ENV"
	EnvPort        = "LISTDIST_APP_PORT"
	EnvLogLevel    = "LISTDIST_LOG_LEVEL"
	EnvDBDSN       = "LISTDIST_DB_DSN"
	EnvDBHost      = "LISTDIST_DB_HOST"
	EnvDBUser      = "LISTDIST_DB_USER"
	EnvDBName      = "LISTDIST_DB_NAME"
	EnvRedisURL    = "LISTDIST_REDIS_URL"
	EnvJWTSecret   = "LISTDIST_JWT_SECRET"
	EnvJWTIssuer   = "LISTDIST_JWT_ISSUER"
	EnvJWTExpMins  = "LISTDIST_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite   = "LISTDIST_USE_SQLITE"
	EnvUploadMaxMB = "LISTDIST_UPLOAD_MAX_MB"
	EnvUploadTTL   = "LISTDIST_UPLOAD_TIMEOUT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
