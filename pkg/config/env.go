package config

const (
	EnvPrefix = "GLASSOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "GLASSOPS_APP_ENV"
	EnvPort                   = "GLASSOPS_APP_PORT"
	EnvDBDSN                  = "GLASSOPS_DB_DSN"
	EnvDBHost                 = "GLASSOPS_DB_HOST"
	EnvDBUser                 = "GLASSOPS_DB_USER"
	EnvDBName                 = "GLASSOPS_DB_NAME"
	EnvDBPassword             = "GLASSOPS_DB_PASSWORD"
	EnvRedisURL               = "GLASSOPS_REDIS_URL"
	EnvJWTSecret              = "GLASSOPS_JWT_SECRET"
	EnvJWTIssuer              = "GLASSOPS_JWT_ISSUER"
	EnvJWTExpMins             = "GLASSOPS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GLASSOPS_REFRESH_TOKEN_TTL_MINUTES"
	EnvUploadsDir             = "GLASSOPS_UPLOADS_DIR"
	EnvTwilioSID              = "GLASSOPS_TWILIO_ACCOUNT_SID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
