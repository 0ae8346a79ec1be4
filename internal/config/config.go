package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "pdoom_config.yml"

type Config struct {
	Version    string       `yaml:"version" json:"version"`
	Difficulty string       `yaml:"difficulty" json:"difficulty"`
	DataDir    string       `yaml:"data_dir" json:"data_dir"`
	Balance    Balance      `yaml:"balance" json:"balance"`
	Server     ServerConfig `yaml:"server" json:"server"`
	Player     PlayerConfig `yaml:"player" json:"player"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr" json:"addr"`
	MaxSessions     int    `yaml:"max_sessions" json:"max_sessions"`
	AccessLog       bool   `yaml:"access_log" json:"access_log"`
	ScoreboardLimit int    `yaml:"scoreboard_limit" json:"scoreboard_limit"`
}

type PlayerConfig struct {
	Name      string `yaml:"name" json:"name"`
	GuidePath string `yaml:"guide_path" json:"guide_path"`
}

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// Balance keys overlay the difficulty preset, so an explicit zero is kept.
	cfg.Balance = Preset(normalizeDifficulty(cfg.Difficulty))
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadOrDefault returns defaults when the file does not exist. A file that exists but
// cannot be parsed still yields defaults, together with the parse error so callers can log it.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return DefaultConfig(), err
}

func normalizeDifficulty(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return "default"
	}
	return d
}

func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Version) == "" {
		c.Version = "1"
	}
	c.Difficulty = normalizeDifficulty(c.Difficulty)
	if isZeroBalance(c.Balance) {
		c.Balance = Preset(c.Difficulty)
	}
	c.Balance.ApplyDefaults()

	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":42069"
	}
	if c.Server.MaxSessions <= 0 {
		c.Server.MaxSessions = 64
	}
	if c.Server.ScoreboardLimit <= 0 {
		c.Server.ScoreboardLimit = 10
	}
	if strings.TrimSpace(c.Player.Name) == "" {
		c.Player.Name = "Lab Director"
	}
}

func isZeroBalance(b Balance) bool {
	return b == Balance{}
}
