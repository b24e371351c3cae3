package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig       `mapstructure:"log"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	Pipeline   PipelineConfig  `mapstructure:"pipeline"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Worker     WorkerConfig    `mapstructure:"worker"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" validate:"oneof=json console"`
}

type HTTPConfig struct {
	Addr         string   `mapstructure:"addr" validate:"required"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes" validate:"gt=0"`
	APIKeys      []string `mapstructure:"api_keys" validate:"dive,min=16"`
}

type PipelineConfig struct {
	Workers        int    `mapstructure:"workers" validate:"gte=0,lte=256"`
	ChunkSize      int    `mapstructure:"chunk_size" validate:"gte=0"`
	Encoding       string `mapstructure:"encoding" validate:"omitempty,oneof=utf-8 utf8 latin1 iso-8859-1 windows-1252 cp1252"`
	DefaultCountry string `mapstructure:"default_country" validate:"omitempty,len=2,alpha"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
	ConnectRetry    time.Duration `mapstructure:"connect_retry"` // 0 = single attempt
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ConnectRetry time.Duration `mapstructure:"connect_retry"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic" validate:"required"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps" validate:"gte=0"` // per API key; 0 disables
}

type WorkerConfig struct {
	Count      int           `mapstructure:"count" validate:"gte=1"`
	JobTimeout time.Duration `mapstructure:"job_timeout" validate:"gt=0"`
}

// Load reads embedded defaults, merges user YAML (if provided), applies env
// overrides (FICHERORS_*, nested keys joined by "_", also read from a .env
// file in the working directory) and validates the result.
func Load(path string) (Config, error) {
	// variables already set in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (FICHERORS_*)
	v.SetEnvPrefix("FICHERORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Pipeline.DefaultCountry = strings.ToUpper(cfg.Pipeline.DefaultCountry)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
