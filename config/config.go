package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	HTTPPort    int
	MetricsPort int

	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	SecretKey  string
	SessionTTL time.Duration
	PageSize   int

	TelegramBotToken string
	AdminChatID      int64
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "taxipark"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", 8080))
	cfg.MetricsPort = cast.ToInt(getOrReturnDefault("METRICS_PORT", 9090))

	cfg.DBDriver = cast.ToString(getOrReturnDefault("DB_DRIVER", DriverPostgres))
	cfg.SQLitePath = cast.ToString(getOrReturnDefault("SQLITE_PATH", "./data/taxipark.db"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "taxipark"))

	cfg.SecretKey = cast.ToString(getOrReturnDefault("SECRET_KEY", "insecure-dev-secret-change-me"))
	cfg.SessionTTL = cast.ToDuration(getOrReturnDefault("SESSION_TTL", "336h"))
	cfg.PageSize = cast.ToInt(getOrReturnDefault("PAGE_SIZE", 5))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.AdminChatID = cast.ToInt64(getOrReturnDefault("ADMIN_CHAT_ID", 0))

	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 14 * 24 * time.Hour
	}

	return cfg
}

// PostgresURL builds the connection string shared by pgxpool and golang-migrate.
func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
