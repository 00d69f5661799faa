// Package migrations embeds the SQL schema for the sqlite event journal.
package migrations

import "embed"

// EventsFS holds the event journal schema migrations.
//
//go:embed events
var EventsFS embed.FS
