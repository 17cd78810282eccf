// Package pipeline implements the three stages of the load job and the
// driver that runs them in order.
//
// Each stage reads the artifact written by its predecessor and writes its
// own:
//
//	input (legacy encoding) -> Loader -> loaded CSV
//	loaded CSV -> Transformer -> transformed CSV
//	transformed CSV -> Persister -> target table
//
// Stages receive their settings through an explicit Config; nothing is read
// from package-level state.
package pipeline
