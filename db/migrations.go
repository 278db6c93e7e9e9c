// Package db holds the SQL schema of the report store.
package db

import "embed"

// Migrations are applied in file-name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
