// Package source provides JobSource implementations for the job catalog.
//
// The catalog is read-only input consumed once at Coordinator start. Two
// sources ship with the library:
//
//   - Static: fixed in-memory catalog, useful for tests and embedders that
//     assemble jobs programmatically
//   - File: YAML catalog loaded from disk
package source
