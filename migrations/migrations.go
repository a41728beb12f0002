// Package migrations embeds the postgres schema for the student store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
