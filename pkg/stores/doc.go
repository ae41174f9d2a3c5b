// Package stores persists factoring runs and their per-outcome attempts in
// SQLite. Schema changes ship as embedded golang-migrate migrations.
package stores
