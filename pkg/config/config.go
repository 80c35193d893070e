package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Upload       UploadConfig
	BatchID      BatchIDConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.DB.SQLite(cfg.FeatureFlags)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LISTDIST_APP_ENV" required:"true"`
	Port         string `envconfig:"LISTDIST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LISTDIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LISTDIST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LISTDIST_DB_DSN"`
	Driver string `envconfig:"LISTDIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LISTDIST_DB_HOST"`
	LegacyPort     int    `envconfig:"LISTDIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LISTDIST_DB_USER"`
	LegacyPassword string `envconfig:"LISTDIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"LISTDIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"LISTDIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LISTDIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LISTDIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LISTDIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LISTDIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"LISTDIST_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LISTDIST_REDIS_URL"`
	Address      string        `envconfig:"LISTDIST_REDIS_ADDR"`
	Password     string        `envconfig:"LISTDIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"LISTDIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LISTDIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LISTDIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LISTDIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LISTDIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LISTDIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"LISTDIST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LISTDIST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LISTDIST_JWT_EXPIRATION_MINUTES" default:"60"`
	LeewaySeconds     int    `envconfig:"LISTDIST_JWT_LEEWAY_SECONDS" default:"30"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LISTDIST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LISTDIST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LISTDIST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LISTDIST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LISTDIST_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LISTDIST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LISTDIST_AUTO_MIGRATE" default:"false"`
}

type UploadConfig struct {
	MaxUploadMB int           `envconfig:"LISTDIST_UPLOAD_MAX_MB" default:"20"`
	Timeout     time.Duration `envconfig:"LISTDIST_UPLOAD_TIMEOUT" default:"60s"`
}

// MaxUploadBytes converts the configured megabyte ceiling into bytes.
func (u UploadConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

// BatchIDConfig tunes the Redis-backed batch identifier reservation.
type BatchIDConfig struct {
	ReservationTTL time.Duration `envconfig:"LISTDIST_BATCH_ID_RESERVATION_TTL" default:"10m"`
	MaxAttempts    int           `envconfig:"LISTDIST_BATCH_ID_MAX_ATTEMPTS" default:"5"`
}

// CORSConfig lists the browser origins allowed to call the admin API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LISTDIST_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAgeSeconds  int      `envconfig:"LISTDIST_CORS_MAX_AGE" default:"300"`
}

// SQLite reports whether the store runs on SQLite instead of Postgres.
func (db DBConfig) SQLite(flags FeatureFlagsConfig) bool {
	driver := strings.ToLower(db.Driver)
	return flags.UseSQLite || driver == "sqlite" || driver == "sqlite3"
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:listdist.db?cache=shared"
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
