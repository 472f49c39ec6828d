// Package migrations embeds the SQL schema for each supported database dialect.
// Files are applied in lexical order; names follow NNNN_description.up.sql.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
