package pipeline

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Rename maps a source column name to its new name.
type Rename struct {
	From string
	To   string
}

// Config carries every setting the stages need.
type Config struct {
	// InputPath is the raw file read by the Loader.
	InputPath string
	// LoadedPath is the Loader's output and the Transformer's input.
	LoadedPath string
	// TransformedPath is the Transformer's output and the Persister's input.
	TransformedPath string

	// Dialects are the candidate read dialects, tried in order.
	Dialects []dataset.Dialect

	// Renames are applied in order by the Transformer.
	Renames []Rename
	// RowLimit truncates the transformed dataset; <= 0 keeps every row.
	RowLimit int
	// SampleRows is the number of rows logged after each file stage.
	SampleRows int

	Target core.TargetConfig
	Table  string
}

// DefaultConfig returns the stock job configuration.
func DefaultConfig() Config {
	return Config{
		InputPath:       "Tipo_de_transacao.csv",
		LoadedPath:      "data/dados_carregados.csv",
		TransformedPath: "data/dados_transformados.csv",
		Dialects: []dataset.Dialect{
			{Delimiter: ';', Encoding: "latin-1"},
			{Delimiter: ',', Encoding: "latin-1"},
		},
		Renames:    []Rename{{From: "Tipo", To: "Categoria"}},
		RowLimit:   10,
		SampleRows: 5,
		Target: core.TargetConfig{
			Type:     "sqlite",
			Database: "data/meu_banco.db",
		},
		Table: "transacoes",
	}
}

// Validate checks the configuration for errors that would only surface
// mid-run otherwise.
func (c *Config) Validate() error {
	var errs []error
	if c.InputPath == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if c.LoadedPath == "" {
		errs = append(errs, errors.New("loaded path is required"))
	}
	if c.TransformedPath == "" {
		errs = append(errs, errors.New("transformed path is required"))
	}
	if len(c.Dialects) == 0 {
		errs = append(errs, errors.New("at least one read dialect is required"))
	}
	for _, d := range c.Dialects {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for i, r := range c.Renames {
		if r.From == "" || r.To == "" {
			errs = append(errs, fmt.Errorf("rename %d: both source and target columns are required", i+1))
		}
	}
	if c.Table == "" {
		errs = append(errs, errors.New("table name is required"))
	}
	if c.Target.Type == "" {
		errs = append(errs, errors.New("target type is required"))
	}
	return errors.Join(errs...)
}
