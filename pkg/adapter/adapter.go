// Package adapter provides the database adapter contract used by the
// persistence stage, together with shared database/sql plumbing and the
// adapter registry.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves from init(). Import them with a blank identifier.
package adapter

import (
	"github.com/leapstack-labs/leapetl/pkg/core"
)

type (
	// Adapter is an alias for core.Adapter.
	Adapter = core.Adapter

	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)
