package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-grid/internal/config"
	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	Logging         config.LoggingConfig `yaml:"logging"`
	uploadSizeBytes int64
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes),
		Logging:         config.LoggingConfig{},
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}

	size, err := parseSize(cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	cfg.uploadSizeBytes = size

	return cfg, nil
}

// UploadSizeBytes returns the parsed maximum upload size.
func (c *Config) UploadSizeBytes() int64 {
	if c.uploadSizeBytes <= 0 {
		return constants.DefaultMaxUploadSizeBytes
	}
	return c.uploadSizeBytes
}

// parseSize interprets a size string as plain bytes or with a KB/MB
// suffix.
func parseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(trimmed, "MB"):
		multiplier = 1024 * 1024
		trimmed = strings.TrimSuffix(trimmed, "MB")
	case strings.HasSuffix(trimmed, "KB"):
		multiplier = 1024
		trimmed = strings.TrimSuffix(trimmed, "KB")
	}

	number, err := strconv.ParseInt(strings.TrimSpace(trimmed), 10, 64)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid maxUploadSize %q", value)
	}

	return number * multiplier, nil
}
