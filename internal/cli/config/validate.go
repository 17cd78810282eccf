package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/pkg/adapter"
)

// ValidateTarget checks that the target names a registered adapter.
func ValidateTarget(t *TargetConfig) error {
	if t == nil || t.Type == "" {
		return errors.New("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if c.Table == "" {
		errs = append(errs, errors.New("table is required"))
	}
	if len(c.Delimiters) == 0 {
		errs = append(errs, errors.New("at least one delimiter is required"))
	}
	if _, err := output.ParseMode(c.Output); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat))
	}
	if err := ValidateTarget(c.Target); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
