package snapshot

import "embed"

// Migrations holds the snapshot store schema, applied with goose.
//
//go:embed migrations/*.sql
var Migrations embed.FS
