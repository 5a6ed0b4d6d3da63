package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ResumeGapMinutes is the idle gap at or above which a resume boundary
	// is detected.
	ResumeGapMinutes float64 `yaml:"resume_gap_minutes"`
	// Output selects the default CLI rendering: "text" or "json".
	Output string `yaml:"output"`
	Theme  string `yaml:"theme"`
	// LogsDir is the default directory scanned for fork analysis.
	LogsDir string `yaml:"logs_dir"`
}

func DefaultConfig() Config {
	return Config{
		ResumeGapMinutes: 10,
		Output:           "text",
		Theme:            "porcelain",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ResumeGapMinutes <= 0 {
		cfg.ResumeGapMinutes = 10
	}
	if cfg.Output != "json" && cfg.Output != "text" {
		cfg.Output = "text"
	}
	if cfg.Theme == "" {
		cfg.Theme = "porcelain"
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "sessionlens", "config.yml")
}
