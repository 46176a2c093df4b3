// Package migrations embeds the SQL schema so the binary and the tests apply
// the same migrations without a filesystem dependency.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
