package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ilnaes/gopad/internal/logger"
)

type Config struct {
	Addr string
	Port int

	// empty keeps snapshots in memory
	MongoURI string
	MongoDB  string

	LogLevel         slog.Level
	SnapshotInterval time.Duration
	HistoryLimit     int // committed ops kept per document for rebasing
}

func Default() Config {
	return Config{
		Addr:             "127.0.0.1",
		Port:             8080,
		MongoDB:          "gopad",
		LogLevel:         slog.LevelInfo,
		SnapshotInterval: 30 * time.Second,
		HistoryLimit:     1024,
	}
}

// Load reads GOPAD_* settings from the environment, falling back to the
// given .env files (missing files are skipped) and then to Default.
// The process environment is never modified.
func Load(files ...string) (Config, error) {
	fileEnv := map[string]string{}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		vals, err := godotenv.Read(f)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read %s", f)
		}
		for k, v := range vals {
			if _, ok := fileEnv[k]; !ok {
				fileEnv[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	c := Default()
	var err error
	if v, ok := lookup("GOPAD_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("GOPAD_PORT"); ok {
		if c.Port, err = strconv.Atoi(v); err != nil {
			return Config{}, errors.Wrap(err, "GOPAD_PORT")
		}
	}
	if v, ok := lookup("GOPAD_MONGO_URI"); ok {
		c.MongoURI = v
	}
	if v, ok := lookup("GOPAD_MONGO_DB"); ok {
		c.MongoDB = v
	}
	if v, ok := lookup("GOPAD_LOG_LEVEL"); ok {
		c.LogLevel = logger.ParseLevel(v)
	}
	if v, ok := lookup("GOPAD_SNAPSHOT_INTERVAL"); ok {
		if c.SnapshotInterval, err = time.ParseDuration(v); err != nil {
			return Config{}, errors.Wrap(err, "GOPAD_SNAPSHOT_INTERVAL")
		}
	}
	if v, ok := lookup("GOPAD_HISTORY_LIMIT"); ok {
		if c.HistoryLimit, err = strconv.Atoi(v); err != nil {
			return Config{}, errors.Wrap(err, "GOPAD_HISTORY_LIMIT")
		}
	}

	if c.HistoryLimit < 1 {
		return Config{}, errors.Errorf("GOPAD_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.SnapshotInterval <= 0 {
		return Config{}, errors.Errorf("GOPAD_SNAPSHOT_INTERVAL must be positive, got %s", c.SnapshotInterval)
	}
	return c, nil
}
