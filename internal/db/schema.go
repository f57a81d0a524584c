package db

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// EnsureSchema creates schema on Postgres. sqlite has no schemas and is left alone.
func EnsureSchema(d *gorm.DB, schema string) error {
	if d.Dialector.Name() != "postgres" {
		return nil
	}
	return d.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(schema)).Error
}
