package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Order    OrderConfig
	Cart     CartConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig controls the public page cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr    string
	PageTTL time.Duration
}

// AMQPConfig controls outbound order event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL string
}

type OrderConfig struct {
	SubmitTxTimeout  time.Duration
	MaxRetryAttempts int
}

type CartConfig struct {
	SessionTTL time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "comanda")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "comanda")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PAGE_TTL", "1m")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("ORDER_SUBMIT_TX_TIMEOUT", "5s")
	viper.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("CART_SESSION_TTL", "2h")
	viper.SetDefault("LOG_LEVEL", "info")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	pageTTL, err := time.ParseDuration(viper.GetString("REDIS_PAGE_TTL"))
	if err != nil {
		return nil, err
	}
	submitTxTimeout, err := time.ParseDuration(viper.GetString("ORDER_SUBMIT_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	sessionTTL, err := time.ParseDuration(viper.GetString("CART_SESSION_TTL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    viper.GetInt("SERVER_PORT"),
			BaseURL: viper.GetString("SERVER_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Addr:    viper.GetString("REDIS_ADDR"),
			PageTTL: pageTTL,
		},
		AMQP: AMQPConfig{
			URL: viper.GetString("AMQP_URL"),
		},
		Order: OrderConfig{
			SubmitTxTimeout:  submitTxTimeout,
			MaxRetryAttempts: viper.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
		},
		Cart: CartConfig{
			SessionTTL: sessionTTL,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
