// Package config provides configuration management for the leapetl CLI.
//
// Settings are layered with koanf: built-in defaults, then leapetl.yaml,
// then LEAPETL_* environment variables, then command-line flags.
package config

import (
	"path/filepath"

	"github.com/leapstack-labs/leapetl/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Default configuration values.
const (
	DefaultInput       = "Tipo_de_transacao.csv"
	DefaultDataDir     = "data"
	DefaultLoadedFile  = "dados_carregados.csv"
	DefaultTransformed = "dados_transformados.csv"
	DefaultDatabase    = "meu_banco.db"
	DefaultTargetType  = "sqlite"
	DefaultTable       = "transacoes"
	DefaultEncoding    = "latin-1"
	DefaultRowLimit    = 10
	DefaultSampleRows  = 5
	DefaultStateFile   = ".leapetl/state.db"
	DefaultOutput      = "auto"
	DefaultLogFormat   = "text"
)

// DefaultDelimiters are the read delimiters tried in order.
var DefaultDelimiters = []string{";", ","}

// RenameConfig renames one column during the transform stage.
type RenameConfig struct {
	From string `koanf:"from" yaml:"from"`
	To   string `koanf:"to" yaml:"to"`
}

// Config holds all configuration for the CLI.
type Config struct {
	Input       string `koanf:"input" yaml:"input"`
	DataDir     string `koanf:"data_dir" yaml:"data_dir"`
	Loaded      string `koanf:"loaded" yaml:"loaded"`
	Transformed string `koanf:"transformed" yaml:"transformed"`

	Target *TargetConfig `koanf:"target" yaml:"target"`
	Table  string        `koanf:"table" yaml:"table"`

	Encoding   string         `koanf:"encoding" yaml:"encoding"`
	Delimiters []string       `koanf:"delimiters" yaml:"delimiters"`
	Renames    []RenameConfig `koanf:"renames" yaml:"renames"`
	RowLimit   int            `koanf:"row_limit" yaml:"row_limit"`
	SampleRows int            `koanf:"sample_rows" yaml:"sample_rows"`

	// StatePath is the run-history database; empty disables recording.
	StatePath string `koanf:"state_path" yaml:"state_path"`

	Verbose   bool   `koanf:"verbose" yaml:"verbose"`
	Output    string `koanf:"output" yaml:"output"`
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-" yaml:"-"`
}

// applyDerivedPaths fills the stage files and database from DataDir.
func (c *Config) applyDerivedPaths() {
	if c.Loaded == "" {
		c.Loaded = filepath.Join(c.DataDir, DefaultLoadedFile)
	}
	if c.Transformed == "" {
		c.Transformed = filepath.Join(c.DataDir, DefaultTransformed)
	}
	if c.Target.Database == "" && c.Target.IsFileBased() {
		c.Target.Database = filepath.Join(c.DataDir, DefaultDatabase)
	}
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	if dbType == "postgres" {
		return "public"
	}
	return "main"
}

// ApplyTargetDefaults fills unset target fields based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}

// Redacted returns a copy safe to print, with the password masked.
func (c *Config) Redacted() Config {
	out := *c
	if c.Target != nil {
		t := *c.Target
		if t.Password != "" {
			t.Password = "********"
		}
		out.Target = &t
	}
	return out
}
