// Package migrations embeds the SQL schema files so the migrate command
// ships as a single binary. go:embed cannot cross package boundaries, which
// is why the FS lives here instead of in cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
