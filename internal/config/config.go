// Package config resolves the invocation configuration: defaults, then an
// optional YAML file, then PGN2STUDY_* env overrides. CLI flags are applied
// on top by the caller. Nothing is hard-coded; every path arrives here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no config
// file is named explicitly.
const DefaultConfigFile = "pgn2study.yaml"

type AppConfig struct {
	InputPath                   string
	OutputPath                  string
	DeleteSourceAfterConversion bool
}

// fileConfig mirrors the recognized YAML keys. Pointers distinguish
// "absent" from zero values.
type fileConfig struct {
	InputPath                   *string `yaml:"inputPath"`
	OutputPath                  *string `yaml:"outputPath"`
	DeleteSourceAfterConversion *bool   `yaml:"deleteSourceAfterConversion"`
}

// Load resolves the configuration. path names a YAML config file; when
// empty, DefaultConfigFile is used if present and skipped otherwise.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		InputPath:  ".",
		OutputPath: ".",
	}

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultConfigFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if fc.InputPath != nil {
			cfg.InputPath = strings.TrimSpace(*fc.InputPath)
		}
		if fc.OutputPath != nil {
			cfg.OutputPath = strings.TrimSpace(*fc.OutputPath)
		}
		if fc.DeleteSourceAfterConversion != nil {
			cfg.DeleteSourceAfterConversion = *fc.DeleteSourceAfterConversion
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no default config file, fine
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("PGN2STUDY_INPUT_PATH")); v != "" {
		cfg.InputPath = v
	}
	if v := strings.TrimSpace(os.Getenv("PGN2STUDY_OUTPUT_PATH")); v != "" {
		cfg.OutputPath = v
	}
	if v := strings.TrimSpace(os.Getenv("PGN2STUDY_DELETE_SOURCE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DeleteSourceAfterConversion = b
		}
	}

	if cfg.InputPath == "" {
		return nil, errors.New("inputPath must not be empty")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("outputPath must not be empty")
	}
	return cfg, nil
}
