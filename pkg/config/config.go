package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Uploads       UploadsConfig
	VIN           VINConfig
	Notifications NotificationsConfig
	Sendgrid      SendgridConfig
	Twilio        TwilioConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"GLASSOPS_APP_ENV" required:"true"`
	Port         string   `envconfig:"GLASSOPS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GLASSOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GLASSOPS_LOG_WARN_STACK" default:"false"`
	CompanyName  string   `envconfig:"GLASSOPS_COMPANY_NAME" default:"GlassOps Auto Glass & Wheels"`
	CORSOrigins  []string `envconfig:"GLASSOPS_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GLASSOPS_DB_DSN"`
	Driver string `envconfig:"GLASSOPS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GLASSOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"GLASSOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GLASSOPS_DB_USER"`
	LegacyPassword string `envconfig:"GLASSOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GLASSOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GLASSOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GLASSOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GLASSOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GLASSOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GLASSOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GLASSOPS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GLASSOPS_REDIS_ADDR"`
	Password     string        `envconfig:"GLASSOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GLASSOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GLASSOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GLASSOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GLASSOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GLASSOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GLASSOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GLASSOPS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GLASSOPS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GLASSOPS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GLASSOPS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GLASSOPS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GLASSOPS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GLASSOPS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GLASSOPS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GLASSOPS_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"GLASSOPS_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"GLASSOPS_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"GLASSOPS_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	QuoteWindow      time.Duration `envconfig:"GLASSOPS_RATE_LIMIT_QUOTE_WINDOW" default:"10m"`
	QuoteEmailLimit  int           `envconfig:"GLASSOPS_RATE_LIMIT_QUOTE_EMAIL_LIMIT" default:"5"`
	QuoteIPLimit     int           `envconfig:"GLASSOPS_RATE_LIMIT_QUOTE_IP_LIMIT" default:"30"`
	TrustedProxies   int           `envconfig:"GLASSOPS_RATE_LIMIT_TRUSTED_PROXIES" default:"1"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GLASSOPS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GLASSOPS_AUTO_MIGRATE" default:"false"`
	SMSConfirm  bool `envconfig:"GLASSOPS_FEATURE_SMS_CONFIRMATION" default:"false"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"GLASSOPS_UPLOADS_DIR" default:"uploads/quotes"`
	MaxFileMB   int    `envconfig:"GLASSOPS_UPLOADS_MAX_FILE_MB" default:"10"`
	MaxFiles    int    `envconfig:"GLASSOPS_UPLOADS_MAX_FILES" default:"5"`
	MaxMemoryMB int    `envconfig:"GLASSOPS_UPLOADS_MAX_MEMORY_MB" default:"32"`
}

// MaxFileBytes returns the per-file size ceiling.
func (u UploadsConfig) MaxFileBytes() int64 {
	if u.MaxFileMB <= 0 {
		return 10 << 20
	}
	return int64(u.MaxFileMB) << 20
}

type VINConfig struct {
	BaseURL  string        `envconfig:"GLASSOPS_VIN_BASE_URL" default:"https://vpic.nhtsa.dot.gov/api/vehicles"`
	Timeout  time.Duration `envconfig:"GLASSOPS_VIN_TIMEOUT" default:"5s"`
	CacheTTL time.Duration `envconfig:"GLASSOPS_VIN_CACHE_TTL" default:"720h"`
}

type NotificationsConfig struct {
	Workers     int           `envconfig:"GLASSOPS_NOTIFY_WORKERS" default:"4"`
	QueueSize   int           `envconfig:"GLASSOPS_NOTIFY_QUEUE_SIZE" default:"256"`
	TaskTimeout time.Duration `envconfig:"GLASSOPS_NOTIFY_TASK_TIMEOUT" default:"15s"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"GLASSOPS_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"GLASSOPS_SENDGRID_FROM_EMAIL" default:"quotes@glassops.local"`
	BaseURL     string `envconfig:"GLASSOPS_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
}

type TwilioConfig struct {
	AccountSID string `envconfig:"GLASSOPS_TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"GLASSOPS_TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"GLASSOPS_TWILIO_FROM_NUMBER"`
}

// Enabled reports whether enough credentials are present to send SMS.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

type CronConfig struct {
	Schedule           string        `envconfig:"GLASSOPS_CRON_SCHEDULE" default:"0 3 * * *"`
	LockTTL            time.Duration `envconfig:"GLASSOPS_CRON_LOCK_TTL" default:"30m"`
	QuoteRetentionDays int           `envconfig:"GLASSOPS_CRON_QUOTE_RETENTION_DAYS" default:"90"`
	ArchiveBatchSize   int           `envconfig:"GLASSOPS_CRON_ARCHIVE_BATCH_SIZE" default:"500"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
