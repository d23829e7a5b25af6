package dbmigrate

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fdg312/carb-coach/migrations"
)

// Run выполняет goose-команду (up|status|down) против Postgres.
// Миграции берутся из встроенного FS, если fsys == nil.
func Run(command string, dbURL string, fsys fs.FS) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if fsys == nil {
		fsys = migrations.FS
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, DefaultMigrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}
