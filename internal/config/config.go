// Package config loads the bot's runtime settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

// Config holds every tunable of the process. TemplateSheetID defaults to the
// empty pod-stats workbook copied on /setup.
type Config struct {
	DiscordToken          string        `env:"DISCORD_BOT_TOKEN,required"`
	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"PodStatsAuth.json"`
	TemplateSheetID       string        `env:"PODSTATS_TEMPLATE_SHEET_ID" envDefault:"1uHT4HWD_x00-AVKbeot7h-2OVcPnJfu-9y2cERcVmxU"`
	DBPath                string        `env:"PODSTATS_DB_PATH" envDefault:"podstats.db"`
	LegacyChannelsFile    string        `env:"PODSTATS_LEGACY_CHANNELS_FILE" envDefault:"channels.json"`
	LegacySheetsFile      string        `env:"PODSTATS_LEGACY_SHEETS_FILE" envDefault:"active_stats.json"`
	HealthAddr            string        `env:"PODSTATS_HEALTH_ADDR" envDefault:"127.0.0.1:8080"`
	PodSize               int           `env:"PODSTATS_POD_SIZE" envDefault:"4"`
	MatchCutoff           float64       `env:"PODSTATS_MATCH_CUTOFF" envDefault:"0.4"`
	RosterTimeout         time.Duration `env:"PODSTATS_ROSTER_TIMEOUT" envDefault:"90s"`
	CollectTimeout        time.Duration `env:"PODSTATS_COLLECT_TIMEOUT" envDefault:"60s"`
	ConfirmTimeout        time.Duration `env:"PODSTATS_CONFIRM_TIMEOUT" envDefault:"30s"`
	TableInterval         time.Duration `env:"PODSTATS_TABLE_INTERVAL" envDefault:"500ms"`
	LogLevel              string        `env:"PODSTATS_LOG_LEVEL" envDefault:"info"`
	LogFormat             string        `env:"PODSTATS_LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return eris.Wrap(err, "parse env")
	}
	return nil
}

// Load reads an optional .env file, parses the environment and validates
// the result.
func Load(files ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(files...)

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the controller cannot run with.
func (c *Config) Validate() error {
	if c.PodSize < 1 {
		return eris.Errorf("pod size must be at least 1, got %d", c.PodSize)
	}
	if c.MatchCutoff < 0 || c.MatchCutoff > 1 {
		return eris.Errorf("match cutoff must be within [0,1], got %v", c.MatchCutoff)
	}
	for name, d := range map[string]time.Duration{
		"roster timeout":  c.RosterTimeout,
		"collect timeout": c.CollectTimeout,
		"confirm timeout": c.ConfirmTimeout,
	} {
		if d <= 0 {
			return eris.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.TableInterval < 0 {
		return eris.Errorf("table interval must not be negative, got %s", c.TableInterval)
	}
	return nil
}
