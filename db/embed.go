// Package db carries the SQL migrations so binaries can apply them without
// a checkout of the repository.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
