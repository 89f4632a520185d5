package migrations

import "embed"

// FS holds the versioned schema files shipped with every binary.
//
//go:embed *.sql
var FS embed.FS
