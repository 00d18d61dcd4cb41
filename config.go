package modelstate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML recorder configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("modelstate: failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML recorder configuration.
//
//	history_suffix: _audit
//	redact_keys: [password, api_token]
//	excludes: [remember_token]
//	without_timestamps: true
//	skip_if_not_exists: true
//	log_level: debug
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("modelstate: failed to parse config: %w", err)
	}
	return cfg, nil
}
