// Package migrations embeds the SQL schema for the postgres driver.
package migrations

import "embed"

// FS contiene los scripts de esquema. Solo se aplican los *_up.sql,
// en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
