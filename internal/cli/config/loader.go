package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/dbcleaner/internal/config"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by the loader.
// Nested keys use a double underscore: DBCLEANER_TARGET__DSN -> target.dsn.
const EnvPrefix = "DBCLEANER_"

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps CLI flag names onto config keys. Flags not listed here are
// loaded under their snake_case name when that is a top-level config key.
var flagKeys = map[string]string{
	"env":               "environment",
	"dialect":           "target.dialect",
	"dsn":               "target.dsn",
	"path":              "target.path",
	"host":              "target.host",
	"port":              "target.port",
	"database":          "target.database",
	"user":              "target.user",
	"mode":              "clean.mode",
	"ignore":            "clean.ignore_tables",
	"schema":            "clean.schemas",
	"count-concurrency": "count_concurrency",
	"verbose":           "verbose",
	"output":            "output",
}

// listKeys are split on commas when read from environment variables.
var listKeys = map[string]bool{
	"clean.ignore_tables": true,
	"clean.schemas":       true,
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > dbcleaner.yaml/.yml in the nearest ancestor directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	root := intconfig.FindProjectRoot(cwd, maxUpwardSearchLevels)
	if root == "" {
		return ""
	}
	return intconfig.FindConfigFile(root)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, in-memory or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	flagPath := ""
	if flags != nil && flags.Changed("path") {
		if v, _ := flags.GetString("path"); v != "" {
			flagPath = v
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"environment":       "",
		"verbose":           false,
		"output":            DefaultOutput,
		"count_concurrency": intconfig.DefaultCountConcurrency,
		"clean.mode":        string(DefaultMode),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Overlay the selected environment's section onto the base config
	if name := selectedEnvironment(flags); name != "" {
		prefix := "environments." + name
		if !k.Exists(prefix) {
			return nil, fmt.Errorf("environment %q not found in config\nHint: Define it under environments in %s", name, intconfig.ConfigFileName)
		}
		if err := k.Merge(k.Cut(prefix)); err != nil {
			return nil, fmt.Errorf("failed to apply environment %q: %w", name, err)
		}
	}

	// 4. Load environment variables (DBCLEANER_ prefix)
	// Transform: DBCLEANER_CLEAN__IGNORE_TABLES -> clean.ignore_tables
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}

	// Expand environment variables in target
	expandTargetEnvVars(cfg.Target)

	// Paths from the config file are relative to the file; flag paths to the CWD.
	if flagPath != "" {
		cfg.Target.Path = flagPath
	} else if configFileUsed != "" {
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			cfg.Target.Path = resolvePathRelativeTo(cfg.Target.Path, filepath.Dir(abs))
		}
	}

	intconfig.ApplyTargetDefaults(cfg.Target)
	intconfig.ApplyCleanDefaults(&cfg.Clean, cfg.Target)

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, falling back to
// the most recently loaded config.
func GetConfig(ctx context.Context) (*Config, error) {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c, nil
	}
	if currentConfig != nil {
		return currentConfig, nil
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// selectedEnvironment returns the environment named by --env, DBCLEANER_ENVIRONMENT
// or the config file, in that order.
func selectedEnvironment(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("env") {
		if v, _ := flags.GetString("env"); v != "" {
			return v
		}
	}
	if v := os.Getenv(EnvPrefix + "ENVIRONMENT"); v != "" {
		return v
	}
	return k.String("environment")
}

// envVarPattern matches ${VAR} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.DSN = expandEnvVars(t.DSN)
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Path = expandEnvVars(t.Path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
