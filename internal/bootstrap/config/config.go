package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"complyd/internal/bootstrap/logging"
	"complyd/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ReportsConfig struct {
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	Model           string        `mapstructure:"model"`
	PromptVersion   string        `mapstructure:"prompt_version"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
}

// SeedConfig bootstraps one company with baseline reference data on start.
// Left empty, seeding is skipped.
type SeedConfig struct {
	CompanyID   string `mapstructure:"company_id"`
	CompanyName string `mapstructure:"company_name"`
}

type PolicyConfig struct {
	// AllowCloseFromDraft controls whether an audit may be closed straight
	// from DRAFT (abandoning an unstarted audit).
	AllowCloseFromDraft bool `mapstructure:"allow_close_from_draft"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COMPLYD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, using defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}

	logging.Info(logCtx, "config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
	)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "complyd")
	v.SetDefault("app.env", "local")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("reports.model", "gpt-4o-mini")
	v.SetDefault("reports.prompt_version", "v1")
	v.SetDefault("reports.rate_limit", 10)
	v.SetDefault("reports.rate_limit_window", time.Minute)
	v.SetDefault("reports.generate_timeout", 30*time.Second)
	v.SetDefault("policy.allow_close_from_draft", true)
	v.SetDefault("seed.company_id", "")
	v.SetDefault("seed.company_name", "")
}
