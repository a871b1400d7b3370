package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string // HTTP bind address for serve mode
	LogDir      string // logs directory
	DatabaseURL string // postgres://...; empty means in-memory store
	RedisURL    string // redis://host:6379/0

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	ProbeTimeout  time.Duration // default per-service probe deadline
	CheckInterval time.Duration // 0 disables the serve-mode loop
	Concurrency   int           // max concurrent probes per cycle

	TriggerRPM   int // ratelimit on the manual trigger endpoint
	TriggerBurst int
}

func FromEnv() Config {
	cfg := Config{
		Addr:          getenv("ADDR", "127.0.0.1:8080"),
		LogDir:        getenv("LOG_DIR", "logs"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getint("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      getenv("SMTP_FROM", "monitor@localhost"),
		ProbeTimeout:  time.Duration(getint("PROBE_TIMEOUT_MS", 10000)) * time.Millisecond,
		CheckInterval: time.Duration(getint("CHECK_INTERVAL_MS", 60000)) * time.Millisecond,
		Concurrency:   getint("MAX_CONCURRENT_CHECKS", 10),
		TriggerRPM:    getint("TRIGGER_RPM", 30),
		TriggerBurst:  getint("TRIGGER_BURST", 10),
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
