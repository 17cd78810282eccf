package config

import (
	"fmt"

	"github.com/leapstack-labs/leapetl/internal/pipeline"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Dialects returns one read dialect per configured delimiter, in order.
func (c *Config) Dialects() ([]dataset.Dialect, error) {
	out := make([]dataset.Dialect, 0, len(c.Delimiters))
	for _, s := range c.Delimiters {
		r, err := dataset.ParseDelimiter(s)
		if err != nil {
			return nil, err
		}
		d := dataset.Dialect{Delimiter: r, Encoding: c.Encoding}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// PipelineConfig converts the CLI configuration into the job configuration.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	dialects, err := c.Dialects()
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("invalid read dialect: %w", err)
	}

	renames := make([]pipeline.Rename, len(c.Renames))
	for i, r := range c.Renames {
		renames[i] = pipeline.Rename{From: r.From, To: r.To}
	}

	pc := pipeline.Config{
		InputPath:       c.Input,
		LoadedPath:      c.Loaded,
		TransformedPath: c.Transformed,
		Dialects:        dialects,
		Renames:         renames,
		RowLimit:        c.RowLimit,
		SampleRows:      c.SampleRows,
		Table:           c.Table,
	}
	if c.Target != nil {
		pc.Target = *c.Target
	}
	if err := pc.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	return pc, nil
}
