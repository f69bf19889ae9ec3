package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Store   StoreConfig
	Lockout LockoutConfig
	Argon2  Argon2Config
	Log     LogConfig
}

type StoreConfig struct {
	// URL selects the backing medium: postgres:// and redis:// URLs pick the
	// corresponding store, anything else is a JSON file path.
	URL string
	// Timeout bounds every call against network-backed stores.
	Timeout time.Duration
}

type LockoutConfig struct {
	MaxFailures  int
	LockDuration time.Duration
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		_ = viper.ReadInConfig()
	}

	cfg := &Config{
		Store: StoreConfig{
			URL:     getEnvOrDefault("LOCKGATE_STORE_URL", "accounts.json"),
			Timeout: viper.GetDuration("LOCKGATE_STORE_TIMEOUT"),
		},
		Lockout: LockoutConfig{
			MaxFailures:  viper.GetInt("LOCKGATE_MAX_FAILURES"),
			LockDuration: viper.GetDuration("LOCKGATE_LOCK_DURATION"),
		},
		Argon2: Argon2Config{
			Memory:      uint32(viper.GetInt("LOCKGATE_ARGON2_MEMORY")),
			Iterations:  uint32(viper.GetInt("LOCKGATE_ARGON2_ITERATIONS")),
			Parallelism: uint8(viper.GetInt("LOCKGATE_ARGON2_PARALLELISM")),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOCKGATE_LOG_LEVEL", "info"),
		},
	}
	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = 5 * time.Second
	}
	if cfg.Lockout.MaxFailures <= 0 {
		cfg.Lockout.MaxFailures = 5
	}
	if cfg.Lockout.LockDuration <= 0 {
		cfg.Lockout.LockDuration = 10 * time.Minute
	}
	if cfg.Argon2.Memory == 0 {
		cfg.Argon2.Memory = 64 * 1024
	}
	if cfg.Argon2.Iterations == 0 {
		cfg.Argon2.Iterations = 3
	}
	if cfg.Argon2.Parallelism == 0 {
		cfg.Argon2.Parallelism = 2
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
