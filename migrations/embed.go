// Package migrations embeds the SQL schema for every supported dialect.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per dialect
// (postgresql, mysql, sqlite).
//
//go:embed postgresql/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS
