package commands

import (
	"errors"
	"os"
	"time"

	"gaiaharvest/internal/collector"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/internal/vocab"
	"gaiaharvest/pkg/configutil"
	"gaiaharvest/pkg/sqliteutil"

	"dario.cat/mergo"
)

// Config is merged over defaultConfig(), so a zero value in the file counts as
// unset. Settings where zero is meaningful are pointers and are resolved by
// their accessors instead.
type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`

	BaseUrl           string  `json:"base_url"`
	GameID            int64   `json:"game_id"`
	BypassCloudflare  bool    `json:"bypass_cloudflare"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	// DelayMs and SecondaryDelayMs of 0 disable that pause.
	DelayMs                     *int `json:"delay_ms"`
	SecondaryDelayMs            *int `json:"secondary_delay_ms"`
	MaxPages                    int  `json:"max_pages"`
	MaxConsecutivePageFailures  int  `json:"max_consecutive_page_failures"`
	MaxConsecutiveMatchFailures *int `json:"max_consecutive_match_failures"`

	Database  sqliteutil.Config `json:"database"`
	Telemetry telemetry.Config  `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		GameID:            vocab.GaiaProjectGameID,
		RequestsPerSecond: 2,
		Database: sqliteutil.Config{
			Driver: sqliteutil.DriverSqlite,
			Path:   "data/harvest.db",
		},
	}
}

// readConfig reads the config file if there is one. Credentials from the
// environment (BGA_USERNAME, BGA_PASSWORD) take priority over the file. With
// search set, path is also looked up in the parent directories.
func readConfig(path string, search bool) (Config, error) {
	config := defaultConfig()

	read := configutil.ReadConfig[Config]
	if search {
		read = configutil.ReadRecursively[Config]
	}
	fromFile, err := read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if err == nil {
		// fields left out of the file keep their defaults
		err = mergo.Merge(&fromFile, config)
		if err != nil {
			return Config{}, err
		}
		config = fromFile
	}

	if username := os.Getenv("BGA_USERNAME"); username != "" {
		config.Username = username
	}
	if password := os.Getenv("BGA_PASSWORD"); password != "" {
		config.Password = password
	}
	return config, nil
}

func millisOr(ms *int, fallback time.Duration) time.Duration {
	if ms == nil {
		return fallback
	}
	return time.Duration(*ms) * time.Millisecond
}

func (c Config) delay() time.Duration {
	return millisOr(c.DelayMs, collector.DefaultBetween)
}

func (c Config) secondaryDelay() time.Duration {
	return millisOr(c.SecondaryDelayMs, collector.DefaultSecondary)
}
