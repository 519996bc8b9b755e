// Package config loads docingest's runtime configuration from environment
// variables via viper, mirroring the env-prefixed/BindEnv pattern used
// throughout this stack.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB     DBConfig
	Mongo  MongoConfig
	S3     S3Config
	Parser ParserConfig
	Queue  QueueConfig
	Log    LogConfig
}

// DBConfig holds PostgreSQL connection settings for the relational
// element-metadata store.
type DBConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpen         int    `mapstructure:"max_open"`
	MaxIdle         int    `mapstructure:"max_idle"`
	AutoCreateTables bool  `mapstructure:"auto_create_tables"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MongoConfig holds MongoDB connection settings for the element-content
// store.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// S3Config holds object-storage settings for the optional image-upload
// path.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ParserConfig holds parse-service client and concurrency settings.
type ParserConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	AuthHeader          string        `mapstructure:"auth_header"`
	AuthToken           string        `mapstructure:"auth_token"`
	Backend             string        `mapstructure:"backend"`
	Lang                string        `mapstructure:"lang"`
	Method              string        `mapstructure:"method"`
	BatchSize           int           `mapstructure:"batch_size"`
	MaxConcurrency      int64         `mapstructure:"max_concurrency"`
	PollIntervalSecs    int           `mapstructure:"poll_interval_secs"`
	OverallTimeoutSecs  int           `mapstructure:"overall_timeout_secs"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryStrategy       string        `mapstructure:"retry_strategy"`
	RetryBaseDelaySecs  int           `mapstructure:"retry_base_delay_secs"`
	RetryMaxDelaySecs   int           `mapstructure:"retry_max_delay_secs"`
	StoreImages         bool          `mapstructure:"store_images"`
}

// PollInterval returns the configured poll interval as a time.Duration.
func (p *ParserConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSecs) * time.Second
}

// OverallTimeout returns the configured overall parse timeout.
func (p *ParserConfig) OverallTimeout() time.Duration {
	return time.Duration(p.OverallTimeoutSecs) * time.Second
}

// RetryBaseDelay returns the configured retry base delay.
func (p *ParserConfig) RetryBaseDelay() time.Duration {
	return time.Duration(p.RetryBaseDelaySecs) * time.Second
}

// RetryMaxDelay returns the configured retry delay cap.
func (p *ParserConfig) RetryMaxDelay() time.Duration {
	return time.Duration(p.RetryMaxDelaySecs) * time.Second
}

// QueueConfig holds the optional IngestionQueueWorker's poll settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// PollInterval returns the configured poll interval as a time.Duration.
func (q *QueueConfig) PollInterval() time.Duration {
	return time.Duration(q.PollIntervalSecs) * time.Second
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the DOCINGEST_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docingest")
	v.SetDefault("db.password", "docingest_secret")
	v.SetDefault("db.name", "docingest_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.auto_create_tables", false)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "docingest")
	v.SetDefault("mongo.collection", "element_data")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docingest-images")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("parser.base_url", "http://localhost:8000")
	v.SetDefault("parser.backend", "pipeline")
	v.SetDefault("parser.lang", "en")
	v.SetDefault("parser.method", "auto")
	v.SetDefault("parser.batch_size", 4)
	v.SetDefault("parser.max_concurrency", 5)
	v.SetDefault("parser.poll_interval_secs", 1)
	v.SetDefault("parser.overall_timeout_secs", 600)
	v.SetDefault("parser.max_retries", 3)
	v.SetDefault("parser.retry_strategy", "exponential")
	v.SetDefault("parser.retry_base_delay_secs", 1)
	v.SetDefault("parser.retry_max_delay_secs", 60)
	v.SetDefault("parser.store_images", false)

	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	envBindings := map[string]string{
		"db.host":              "DOCINGEST_DB_HOST",
		"db.port":              "DOCINGEST_DB_PORT",
		"db.user":              "DOCINGEST_DB_USER",
		"db.password":          "DOCINGEST_DB_PASSWORD",
		"db.name":              "DOCINGEST_DB_NAME",
		"db.sslmode":           "DOCINGEST_DB_SSLMODE",
		"db.max_open":          "DOCINGEST_DB_MAX_OPEN",
		"db.max_idle":          "DOCINGEST_DB_MAX_IDLE",
		"db.auto_create_tables": "DOCINGEST_DB_AUTO_CREATE_TABLES",
		"mongo.uri":            "DOCINGEST_MONGO_URI",
		"mongo.database":       "DOCINGEST_MONGO_DATABASE",
		"mongo.collection":     "DOCINGEST_MONGO_COLLECTION",
		"s3.region":            "DOCINGEST_S3_REGION",
		"s3.bucket":            "DOCINGEST_S3_BUCKET",
		"s3.endpoint":          "DOCINGEST_S3_ENDPOINT",
		"s3.access_key":        "DOCINGEST_S3_ACCESS_KEY",
		"s3.secret_key":        "DOCINGEST_S3_SECRET_KEY",
		"s3.presign_expiry":    "DOCINGEST_S3_PRESIGN_EXPIRY",
		"parser.base_url":             "DOCINGEST_PARSER_BASE_URL",
		"parser.auth_header":          "DOCINGEST_PARSER_AUTH_HEADER",
		"parser.auth_token":           "DOCINGEST_PARSER_AUTH_TOKEN",
		"parser.backend":              "DOCINGEST_PARSER_BACKEND",
		"parser.lang":                 "DOCINGEST_PARSER_LANG",
		"parser.method":               "DOCINGEST_PARSER_METHOD",
		"parser.batch_size":           "DOCINGEST_PARSER_BATCH_SIZE",
		"parser.max_concurrency":      "DOCINGEST_PARSER_MAX_CONCURRENCY",
		"parser.poll_interval_secs":   "DOCINGEST_PARSER_POLL_INTERVAL_SECS",
		"parser.overall_timeout_secs": "DOCINGEST_PARSER_OVERALL_TIMEOUT_SECS",
		"parser.max_retries":          "DOCINGEST_PARSER_MAX_RETRIES",
		"parser.retry_strategy":       "DOCINGEST_PARSER_RETRY_STRATEGY",
		"parser.retry_base_delay_secs": "DOCINGEST_PARSER_RETRY_BASE_DELAY_SECS",
		"parser.retry_max_delay_secs":  "DOCINGEST_PARSER_RETRY_MAX_DELAY_SECS",
		"parser.store_images":          "DOCINGEST_PARSER_STORE_IMAGES",
		"queue.poll_interval_secs": "DOCINGEST_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":        "DOCINGEST_QUEUE_CONCURRENCY",
		"log.level":  "DOCINGEST_LOG_LEVEL",
		"log.format": "DOCINGEST_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{
		DB: DBConfig{
			Host:             v.GetString("db.host"),
			Port:             v.GetInt("db.port"),
			User:             v.GetString("db.user"),
			Password:         v.GetString("db.password"),
			Name:             v.GetString("db.name"),
			SSLMode:          v.GetString("db.sslmode"),
			MaxOpen:          v.GetInt("db.max_open"),
			MaxIdle:          v.GetInt("db.max_idle"),
			AutoCreateTables: v.GetBool("db.auto_create_tables"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("mongo.uri"),
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
		},
		S3: S3Config{
			Region:        v.GetString("s3.region"),
			Bucket:        v.GetString("s3.bucket"),
			Endpoint:      v.GetString("s3.endpoint"),
			AccessKey:     v.GetString("s3.access_key"),
			SecretKey:     v.GetString("s3.secret_key"),
			PresignExpiry: v.GetInt64("s3.presign_expiry"),
		},
		Parser: ParserConfig{
			BaseURL:            v.GetString("parser.base_url"),
			AuthHeader:         v.GetString("parser.auth_header"),
			AuthToken:          v.GetString("parser.auth_token"),
			Backend:            v.GetString("parser.backend"),
			Lang:               v.GetString("parser.lang"),
			Method:             v.GetString("parser.method"),
			BatchSize:          v.GetInt("parser.batch_size"),
			MaxConcurrency:     v.GetInt64("parser.max_concurrency"),
			PollIntervalSecs:   v.GetInt("parser.poll_interval_secs"),
			OverallTimeoutSecs: v.GetInt("parser.overall_timeout_secs"),
			MaxRetries:         v.GetInt("parser.max_retries"),
			RetryStrategy:      v.GetString("parser.retry_strategy"),
			RetryBaseDelaySecs: v.GetInt("parser.retry_base_delay_secs"),
			RetryMaxDelaySecs:  v.GetInt("parser.retry_max_delay_secs"),
			StoreImages:        v.GetBool("parser.store_images"),
		},
		Queue: QueueConfig{
			PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
			Concurrency:      v.GetInt("queue.concurrency"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	return cfg, nil
}
