package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	EventTopic    string

	MaxPollQuestion  int
	MaxPollOption    int
	MaxPollOptions   int
	DefaultThreshold int
	AutoCloseHours   int

	SessionTimeout time.Duration
	SweepInterval  time.Duration

	RateLimitWindow time.Duration
	RateLimitCaps   map[string]int
}

// Load reads configuration from the environment (optionally a .env file),
// applying the documented defaults for anything unset.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.SetDefault("SERVICE_NAME", "pollsbot")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("EVENT_TOPIC", "pollsbot.events")

	v.SetDefault("MAX_POLL_QUESTION", 300)
	v.SetDefault("MAX_POLL_OPTION", 100)
	v.SetDefault("MAX_POLL_OPTIONS", 10)
	v.SetDefault("DEFAULT_DECISION_THRESHOLD", 50)
	v.SetDefault("AUTO_CLOSE_HOURS", 24)

	v.SetDefault("SESSION_TIMEOUT", "2h")
	v.SetDefault("SWEEP_INTERVAL", "5m")

	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
	v.SetDefault("RATE_LIMIT_CREATE_POLL", 10)
	v.SetDefault("RATE_LIMIT_VOTE", 60)
	v.SetDefault("RATE_LIMIT_CREATE_TEMPLATE", 5)
	v.SetDefault("RATE_LIMIT_USE_TEMPLATE", 10)
	v.SetDefault("RATE_LIMIT_MESSAGE", 30)

	v.AutomaticEnv()
	// A missing .env file is fine; the environment still applies.
	_ = v.ReadInConfig()

	var brokers []string
	for _, value := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}

	return Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		HTTPPort:    v.GetString("HTTP_PORT"),

		PostgresDSN:   v.GetString("POSTGRES_DSN"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		KafkaBrokers:  brokers,
		EventTopic:    v.GetString("EVENT_TOPIC"),

		MaxPollQuestion:  v.GetInt("MAX_POLL_QUESTION"),
		MaxPollOption:    v.GetInt("MAX_POLL_OPTION"),
		MaxPollOptions:   v.GetInt("MAX_POLL_OPTIONS"),
		DefaultThreshold: v.GetInt("DEFAULT_DECISION_THRESHOLD"),
		AutoCloseHours:   v.GetInt("AUTO_CLOSE_HOURS"),

		SessionTimeout: v.GetDuration("SESSION_TIMEOUT"),
		SweepInterval:  v.GetDuration("SWEEP_INTERVAL"),

		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitCaps: map[string]int{
			"create_poll":     v.GetInt("RATE_LIMIT_CREATE_POLL"),
			"vote":            v.GetInt("RATE_LIMIT_VOTE"),
			"create_template": v.GetInt("RATE_LIMIT_CREATE_TEMPLATE"),
			"use_template":    v.GetInt("RATE_LIMIT_USE_TEMPLATE"),
			"message":         v.GetInt("RATE_LIMIT_MESSAGE"),
		},
	}, nil
}
