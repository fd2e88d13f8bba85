package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutridiary/kvstore"
	"nutridiary/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	DBDriver   string `env:"DB_DRIVER,default=postgres"`
	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     string `env:"DB_PORT,default=5432"`
	DBUser     string `env:"DB_USER,default=postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME,default=nutridiary"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`
	SQLitePath string `env:"SQLITE_PATH,default=nutridiary.db"`

	KVBackend   string `env:"KV_BACKEND,default=file"`
	KVDir       string `env:"KV_DIR,default=.nutridiary"`
	RedisAddr   string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB,default=0"`
	RedisPrefix string `env:"REDIS_PREFIX,default=nutridiary:"`

	IdentityURL     string        `env:"IDENTITY_URL,default=http://localhost:9000"`
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT,default=10s"`

	AWSRegion   string `env:"AWS_REGION,default=us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=40"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	ReconcileSchedule string `env:"RECONCILE_SCHEDULE,default=@every 15m"`
}

// Load reads .env when present and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) KVOptions() kvstore.Options {
	return kvstore.Options{
		Backend:     c.KVBackend,
		Dir:         c.KVDir,
		RedisAddr:   c.RedisAddr,
		RedisDB:     c.RedisDB,
		RedisPrefix: c.RedisPrefix,
	}
}

// OpenDB connects to the document database and migrates the documents table.
func OpenDB(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(c.DBDriver) {
	case "", DriverPostgres:
		dialector = postgres.Open(c.PostgresDSN())
	case DriverSQLite:
		dialector = sqlite.Open(c.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if strings.EqualFold(c.DBDriver, DriverSQLite) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return nil, fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return db, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(c *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}
