// Package database provides the PostgreSQL connection pool used by the
// anomaly sink. Persistence is optional: a watcher with no database
// configured still classifies and broadcasts.
package database
