// Package store provides storage backends for user profiles, health
// records, plans, and subscriptions.
//
// Three implementations share one interface: SQLite (the default),
// PostgreSQL (selected by DSN shape), and an in-memory store for tests.
package store

import "strings"

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a functional option for store configuration.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DSNType identifies which backend a connection string addresses.
type DSNType string

const (
	DSNTypePostgres DSNType = "postgres"
	DSNTypeSQLite   DSNType = "sqlite"
)

// DetectDSNType classifies a DSN. Postgres URLs and key=value connection
// strings go to Postgres; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) DSNType {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DSNTypePostgres
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return DSNTypePostgres
	}
	return DSNTypeSQLite
}
