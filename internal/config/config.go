package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		QuestionTimeoutMillis int    `yaml:"question_timeout_ms"`
		ReportDelayMillis     int    `yaml:"report_delay_ms"`
		QuestionTTL           string `yaml:"question_ttl"`
	} `yaml:"game"`
	Chat struct {
		Host        string `yaml:"host"`
		Port        string `yaml:"port"`
		ContextRoot string `yaml:"context_root"`
	} `yaml:"chat"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Settings is the flat key-value view the game engine consumes. Environment
// variables override file-derived values, so QUESTION_TIMEOUT can be tuned
// without editing the YAML.
type Settings struct {
	values map[string]string
}

func NewSettings(values map[string]string) Settings {
	if values == nil {
		values = make(map[string]string)
	}
	return Settings{values: values}
}

// SettingsFromConfig flattens the game/chat sections into engine keys.
func SettingsFromConfig(cfg Config) Settings {
	values := make(map[string]string)
	if cfg.Game.QuestionTimeoutMillis > 0 {
		values["QUESTION_TIMEOUT"] = strconv.Itoa(cfg.Game.QuestionTimeoutMillis)
	}
	if cfg.Game.ReportDelayMillis > 0 {
		values["REPORT_DELAY"] = strconv.Itoa(cfg.Game.ReportDelayMillis)
	}
	if cfg.Chat.Host != "" {
		values["CHAT_HOST"] = cfg.Chat.Host
	}
	if cfg.Chat.Port != "" {
		values["CHAT_PORT"] = cfg.Chat.Port
	}
	if cfg.Chat.ContextRoot != "" {
		values["CHAT_CONTEXT_ROOT"] = cfg.Chat.ContextRoot
	}
	return NewSettings(values)
}

// Get returns the value for key, environment first, then the config file.
func (s Settings) Get(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	v, ok := s.values[key]
	return v, ok
}
