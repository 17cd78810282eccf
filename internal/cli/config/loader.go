package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read as configuration.
// A double underscore separates nested keys: LEAPETL_TARGET__TYPE.
const EnvPrefix = "LEAPETL_"

// configFileNames are searched in order in each candidate directory.
var configFileNames = []string{"leapetl.yaml", "leapetl.yml"}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps command-line flags to config keys. Flags not listed here
// belong to a single command and are not configuration.
var flagKeys = map[string]string{
	"input":       "input",
	"data-dir":    "data_dir",
	"loaded":      "loaded",
	"transformed": "transformed",
	"database":    "target.database",
	"target-type": "target.type",
	"table":       "table",
	"state":       "state_path",
	"encoding":    "encoding",
	"row-limit":   "row_limit",
	"verbose":     "verbose",
	"log-format":  "log_format",
	"output":      "output",
}

// pathFlags are resolved against the working directory rather than the
// project root, since that is where the user typed them.
var pathFlags = []string{"input", "data-dir", "loaded", "transformed", "state", "database"}

func defaults() map[string]any {
	return map[string]any{
		"input":       DefaultInput,
		"data_dir":    DefaultDataDir,
		"target.type": DefaultTargetType,
		"table":       DefaultTable,
		"encoding":    DefaultEncoding,
		"delimiters":  append([]string(nil), DefaultDelimiters...),
		"renames": []any{
			map[string]any{"from": "Tipo", "to": "Categoria"},
		},
		"row_limit":   DefaultRowLimit,
		"sample_rows": DefaultSampleRows,
		"state_path":  DefaultStateFile,
		"verbose":     false,
		"output":      DefaultOutput,
		"log_format":  DefaultLogFormat,
	}
}

// configIn returns the config file in dir, if any.
func configIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches startDir and its parents for a config file.
func findConfigUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if f := configIn(dir); f != "" {
			return f
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from defaults, the config file, a .env
// file, environment variables and flags, in increasing precedence.
//
// Without an explicit cfgFile, leapetl.yaml is searched for upward from the
// working directory. Relative paths from the file or environment resolve
// against the directory holding the config file (or the working directory
// when there is none); relative paths given as flags resolve against the
// working directory.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	projectRoot := cwd
	if cfgFile == "" {
		cfgFile = findConfigUpward(cwd)
	}
	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfgFile = abs
		projectRoot = filepath.Dir(abs)
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. .env next to the project, then the process environment.
	// Variables already set in the environment win over .env.
	if err := loadDotEnv(projectRoot); err != nil {
		return nil, err
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{Type: DefaultTargetType}
	}
	cfg.Target.Type = strings.ToLower(cfg.Target.Type)
	cfg.ProjectRoot = projectRoot
	cfg.ConfigFile = cfgFile

	expandTargetEnvVars(cfg.Target)
	ApplyTargetDefaults(cfg.Target)
	cfg.resolvePaths(flags, cwd)

	if err := ValidateTarget(cfg.Target); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}

	return &cfg, nil
}

// envKey maps LEAPETL_ROW_LIMIT to row_limit and LEAPETL_TARGET__TYPE to
// target.type. Delimiters are a whitespace-separated list.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "delimiters" {
		return key, strings.Fields(value)
	}
	return key, value
}

func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// resolvePaths makes every file path absolute, then derives the stage files
// and database from the data directory where they were not set.
func (c *Config) resolvePaths(flags *pflag.FlagSet, cwd string) {
	fromFlag := make(map[string]bool, len(pathFlags))
	if flags != nil {
		for _, name := range pathFlags {
			if f := flags.Lookup(name); f != nil && f.Changed {
				fromFlag[name] = true
			}
		}
	}
	base := func(flag string) string {
		if fromFlag[flag] {
			return cwd
		}
		return c.ProjectRoot
	}

	c.Input = resolvePathRelativeTo(c.Input, base("input"))
	c.DataDir = resolvePathRelativeTo(c.DataDir, base("data-dir"))
	c.Loaded = resolvePathRelativeTo(c.Loaded, base("loaded"))
	c.Transformed = resolvePathRelativeTo(c.Transformed, base("transformed"))
	c.StatePath = resolvePathRelativeTo(c.StatePath, base("state"))
	if c.Target.IsFileBased() {
		c.Target.Database = resolvePathRelativeTo(c.Target.Database, base("database"))
	}

	c.applyDerivedPaths()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in connection fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	for k, v := range t.Options {
		t.Options[k] = expandEnvVars(v)
	}
}

type (
	configKey struct{}
	loggerKey struct{}
)

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the configuration stored in ctx, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
