package repository

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	"github.com/pressly/goose/v3"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies the embedded migrations for the store's dialect.
// Every migration is idempotent, so running it on each start is safe.
func (d *DB) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	gooseDialect, dir := "sqlite3", "migrations/sqlite"
	if d.Dialect() == dialect.Postgres {
		gooseDialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{d.logger})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return common.StorageError("migrate", err)
	}
	if err := goose.UpContext(ctx, d.SQL(), dir); err != nil {
		d.logger.Error("migration failed", "dialect", gooseDialect, "error", err)
		return common.StorageError("migrate", err)
	}
	return nil
}

// gooseLogger routes goose output through slog. Fatalf does not exit.
type gooseLogger struct{ l *slog.Logger }

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}
