// Package core defines the shared language of dbcleaner.
//
// This package contains:
//   - Connection handles and connection configuration (Conn, ConnConfig)
//   - Table references (TableRef)
//   - Clean options and modes (CleanOptions, Mode)
//   - Static dialect configuration (DialectConfig)
//
// pkg/core imports only the standard library. Every other package depends
// on core, not the reverse.
package core
