// Package db stores a built catalog in SQLite so it can be queried after
// the build finishes.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
)

// SchemaVersion is bumped whenever schema.sql changes shape.
const SchemaVersion = 1

//go:embed schema.sql
var schemaSQL string

// Schema returns the SQL schema for the database.
func Schema() string {
	return schemaSQL
}

// InitSchema creates all tables if they don't exist and records the schema
// version. It is safe to run on every open.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return putBuildInfo(ctx, db, MetaSchemaVersion, strconv.Itoa(SchemaVersion))
}
