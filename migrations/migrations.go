// Package migrations embeds the shared schema applied at service start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
