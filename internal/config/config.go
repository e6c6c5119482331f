// Package config loads fitmenu settings from a .env file, the process
// environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingSetting = errors.New("missing required setting")
	ErrInvalidSetting = errors.New("invalid setting")
)

type Config struct {
	// DailyCalories and DailyProteins are the daily targets the planner
	// tops the menu up to.
	DailyCalories uint32
	DailyProteins uint32

	Site        SiteConfig
	Storage     StorageConfig
	Server      ServerConfig
	Log         LogConfig
	Supplements []SupplementConfig
}

type SiteConfig struct {
	ProgramURL string
	DetailsURL string
	CatalogURL string
	Timeout    time.Duration
	UserAgent  string
}

type StorageConfig struct {
	DBPath string
}

type ServerConfig struct {
	Host string
	Port int
}

type LogConfig struct {
	Level       string
	Format      string
	Development bool
}

// SupplementConfig describes a food added when the menu falls short of the
// calorie target. Nutrition values are per Quantity grams.
type SupplementConfig struct {
	Description string  `mapstructure:"description"`
	Quantity    uint32  `mapstructure:"quantity"`
	Calories    uint32  `mapstructure:"calories"`
	Proteins    uint32  `mapstructure:"proteins"`
	Weight      float64 `mapstructure:"weight"`
}

type Options struct {
	// ConfigFile is an optional YAML file. Empty means defaults and
	// environment only.
	ConfigFile string
	// EnvFile is loaded into the environment when present.
	EnvFile string
	// TargetsOptional lets commands that never plan a menu run without
	// DAILY_CALORIES and DAILY_PROTEINS. Values that are set must still
	// be valid.
	TargetsOptional bool
}

// Load resolves the configuration. Variables already in the environment win
// over the .env file; both win over the YAML file.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix("FITMENU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("daily_calories", "DAILY_CALORIES")
	_ = v.BindEnv("daily_proteins", "DAILY_PROTEINS")

	dailyCalories, err := requiredUint(v, "daily_calories", "DAILY_CALORIES")
	if err != nil && !(opts.TargetsOptional && errors.Is(err, ErrMissingSetting)) {
		return nil, err
	}
	dailyProteins, err := requiredUint(v, "daily_proteins", "DAILY_PROTEINS")
	if err != nil && !(opts.TargetsOptional && errors.Is(err, ErrMissingSetting)) {
		return nil, err
	}

	cfg := &Config{
		DailyCalories: dailyCalories,
		DailyProteins: dailyProteins,
		Site: SiteConfig{
			ProgramURL: v.GetString("site.program_url"),
			DetailsURL: v.GetString("site.details_url"),
			CatalogURL: strings.TrimSuffix(v.GetString("site.catalog_url"), "/"),
			Timeout:    v.GetDuration("site.timeout"),
			UserAgent:  v.GetString("site.user_agent"),
		},
		Storage: StorageConfig{
			DBPath: v.GetString("storage.db_path"),
		},
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Format:      v.GetString("log.format"),
			Development: v.GetBool("log.development"),
		},
	}

	if err := v.UnmarshalKey("supplements", &cfg.Supplements); err != nil {
		return nil, fmt.Errorf("%w: supplements: %v", ErrInvalidSetting, err)
	}
	if len(cfg.Supplements) == 0 {
		cfg.Supplements = DefaultSupplements()
	}

	return cfg, nil
}

// DefaultSupplements returns chicken breast and whey protein, split evenly.
func DefaultSupplements() []SupplementConfig {
	return []SupplementConfig{
		{Description: "Chicken breast", Quantity: 100, Calories: 110, Proteins: 20},
		{Description: "Whey protein", Quantity: 100, Calories: 388, Proteins: 80},
	}
}

func requiredUint(v *viper.Viper, key, env string) (uint32, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingSetting, env)
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a positive integer", ErrInvalidSetting, env, raw)
	}
	return uint32(n), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.program_url", "https://fitfoodway.ro/programe/creste-masa-musculara")
	v.SetDefault("site.details_url", "https://fitfoodway.ro/fitfoodway/detalii_meniu")
	v.SetDefault("site.catalog_url", "https://fitfoodway.ro")
	v.SetDefault("site.timeout", "30s")
	v.SetDefault("site.user_agent", "fitmenu/1.0")

	v.SetDefault("storage.db_path", "fitmenu.db")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8011)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.development", false)
}
