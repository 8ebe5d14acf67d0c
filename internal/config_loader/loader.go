package config_loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for environment variables that override
	// config keys, e.g. DELEGATOR_HTTP_PORT.
	EnvPrefix = "DELEGATOR"

	// EnvConfigPath is the config file path fallback for --config.
	EnvConfigPath = "DELEGATOR_CONFIG"
)

// Load reads, decodes and validates the configuration file at filePath.
// An empty filePath falls back to the DELEGATOR_CONFIG environment
// variable. YAML files are decoded strictly: unknown keys are an error.
// Priority: environment variables > config file.
func Load(filePath string) (*Config, error) {
	if filePath == "" {
		filePath = os.Getenv(EnvConfigPath)
	}
	if filePath == "" {
		return nil, fmt.Errorf("config file path is required (use --config flag or %s env var)", EnvConfigPath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filePath, err)
	}

	// "::" as key delimiter keeps dotted values (hostnames, paths) intact
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		configMap, err := decodeStrictYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		if err := v.MergeConfigMap(configMap); err != nil {
			return nil, fmt.Errorf("failed to merge config map: %w", err)
		}
	case ".toml":
		v.SetConfigType("toml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (supported: .yaml, .yml, .toml)", filepath.Ext(filePath))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_", "-", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// decodeStrictYAML parses YAML rejecting unknown fields at the top level
// of every mapping.
func decodeStrictYAML(data []byte) (map[string]interface{}, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var configMap map[string]interface{}
	if err := decoder.Decode(&configMap); err != nil {
		return nil, err
	}
	return configMap, nil
}
