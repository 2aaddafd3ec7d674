package programmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.json"

// LoadConfig loads configuration from the given path or the default config.json.
// The format follows the extension: .yaml/.yml, .toml, anything else is JSON.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch configFormat(path) {
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := encodeConfig(configFormat(path), cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func encodeConfig(format string, cfg Config) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

func configFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
