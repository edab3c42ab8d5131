package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// Admins telegram id, получающие роль admin при первом /start
	Admins      []int64 `mapstructure:"admins"`
	PollTimeout int     `mapstructure:"poll_timeout"`
	Debug       bool    `mapstructure:"debug"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Path пустой — вывод в stderr
	Path string `mapstructure:"path"`
}

// ключи без значения по умолчанию не видны Unmarshal из окружения
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("logging.path", "")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "ledgerbot.db")
	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", ":9091")
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("logging.level", "info")
}

// LoadConfig читает config.yaml (если есть) и переменные окружения LEDGERBOT_*.
// path непустой — явный файл конфигурации.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.ledgerbot/")
	}

	// LEDGERBOT_TELEGRAM_TOKEN -> telegram.token
	v.SetEnvPrefix("LEDGERBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// из окружения список приходит строкой "1,2,3"
	if raw := v.GetString("telegram.admins"); len(config.Telegram.Admins) == 0 && raw != "" {
		admins, err := parseIDs(raw)
		if err != nil {
			return nil, fmt.Errorf("telegram.admins: %w", err)
		}
		config.Telegram.Admins = admins
	}
	return &config, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var levels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}

// Validate проверка перед запуском; needToken=false для migrate и export
func (c *Config) Validate(needToken bool) error {
	var errs []error
	if needToken && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Telegram.PollTimeout <= 0 {
		errs = append(errs, errors.New("telegram.poll_timeout must be positive"))
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required when http is enabled"))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	}
	known := false
	for _, l := range levels {
		if c.Logging.Level == l {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
