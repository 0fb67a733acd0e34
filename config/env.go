package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file (if present) into the process
// environment, ignoring a missing file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// ApplyEnvOverrides overlays GROUPCHAT_*-prefixed environment
// variables on top of a loaded Config.
func ApplyEnvOverrides(cfg *Config) {
	if v, ok := durationEnv("GROUPCHAT_PING_INTERVAL"); ok {
		cfg.Network.PingInterval = v
	}
	if v, ok := intEnv("GROUPCHAT_LOSSLESS_WINDOW_SIZE"); ok {
		cfg.Network.LosslessWindowSize = v
	}
	if v, ok := intEnv("GROUPCHAT_RATE_LIMIT_THRESHOLD"); ok {
		cfg.Membership.RateLimitThreshold = v
	}
	if v := os.Getenv("GROUPCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func durationEnv(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}

func intEnv(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
