// Package core defines the shared language of the leapetl system.
//
// This package contains:
//   - Domain entities (Run, StepRun, TableMetadata)
//   - Service interfaces (Adapter, Store)
//   - Configuration types (TargetConfig, AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY pkg/dataset and stdlib.
// All other packages depend on core, not the reverse.
package core
