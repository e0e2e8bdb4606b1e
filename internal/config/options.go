package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/metatool-io/metatool/internal/plugin"
)

// DefaultOptionsPath is the default location for the metatool options file.
// Uses hidden file format following common tool conventions (.eslintrc,
// .prettierrc, etc.).
const DefaultOptionsPath = ".metatool.yaml"

// OptionsPathEnvVar is the environment variable name for a custom options
// file path.
const OptionsPathEnvVar = "METATOOL_OPTIONS_PATH"

// optionsFile is the YAML shape of .metatool.yaml. Every field is optional;
// zero values fall back to defaults or env overrides.
type optionsFile struct {
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	LevenshteinRatioThreshold float64 `yaml:"levenshtein_ratio_threshold"`
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	UserAgent string `yaml:"user_agent"`
	Offline   bool   `yaml:"offline"`
}

// LoadOptions loads engine options from a YAML file at the given path, then
// applies METATOOL_* environment overrides on top.
//
// Behavior:
//   - Returns defaults (not an error) if the file doesn't exist - the
//     options file is optional
//   - Returns defaults + logs a warning if the YAML is invalid (graceful
//     degradation)
//   - Returns the merged options on success
func LoadOptions(path string) plugin.Options {
	opts := plugin.DefaultOptions()

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Options file not found, continuing with defaults",
				slog.String("path", path))

			return applyEnv(opts)
		}

		slog.Warn("Failed to read options file, continuing with defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return applyEnv(opts)
	}

	var file optionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("Failed to parse options file, continuing with defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return applyEnv(opts)
	}

	if file.LevenshteinRatioThreshold != 0 {
		opts.LevenshteinRatioThreshold = file.LevenshteinRatioThreshold
	}

	if file.HTTPTimeout != 0 {
		opts.HTTPTimeout = file.HTTPTimeout
	}

	if file.UserAgent != "" {
		opts.UserAgent = file.UserAgent
	}

	if file.Offline {
		opts.Offline = true
	}

	return applyEnv(opts)
}

// LoadOptionsFromEnv loads options from the path in METATOOL_OPTIONS_PATH,
// falling back to ".metatool.yaml" in the current directory.
func LoadOptionsFromEnv() plugin.Options {
	return LoadOptions(GetEnvStr(OptionsPathEnvVar, DefaultOptionsPath))
}

// applyEnv layers METATOOL_* environment variables over the options.
func applyEnv(opts plugin.Options) plugin.Options {
	opts.LevenshteinRatioThreshold = GetEnvFloat("METATOOL_LEVENSHTEIN_RATIO_THRESHOLD", opts.LevenshteinRatioThreshold)
	opts.HTTPTimeout = GetEnvDuration("METATOOL_HTTP_TIMEOUT", opts.HTTPTimeout)
	opts.UserAgent = GetEnvStr("METATOOL_USER_AGENT", opts.UserAgent)
	opts.Offline = GetEnvBool("METATOOL_OFFLINE", opts.Offline)

	return opts
}
