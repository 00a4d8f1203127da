package db

import "gorm.io/gorm"

// EnsureSchema creates the Postgres schema that holds the boundary and
// lookup-run tables. The name is quoted, so it is used verbatim.
func EnsureSchema(d *gorm.DB, schema string) error {
	if schema == "" {
		return gorm.ErrInvalidField
	}
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
