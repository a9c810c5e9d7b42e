package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Migration is one embedded schema file.
type Migration struct {
	Version int
	File    string
	Applied bool
}

// Run applies pending migrations found under internal/migrate/sql.
// Migrations must be named like 0001_description.sql and will be executed
// in lexicographic order. The entire file is executed as a single statement
// batch; the MySQL DSN should include multiStatements=true.
func Run(ctx context.Context, dsn string, log *slog.Logger) error {
	db, err := open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	migrations, err := list(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Applied {
			log.Debug("migration already applied", slog.Int("version", m.Version), slog.String("file", m.File))
			continue
		}
		b, err := fs.ReadFile(migrationsFS, "sql/"+m.File)
		if err != nil {
			return err
		}
		log.Info("applying migration", slog.Int("version", m.Version), slog.String("file", m.File))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("applying %s: %w", m.File, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)", m.Version, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

// Status reports every embedded migration and whether it has been applied.
func Status(ctx context.Context, dsn string) ([]Migration, error) {
	db, err := open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return list(ctx, db)
}

func open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB;`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func list(ctx context.Context, db *sqlx.DB) ([]Migration, error) {
	var versions []int
	if err := db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return embedded(applied)
}

func embedded(applied map[int]bool) ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]Migration, 0, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		out = append(out, Migration{Version: ver, File: base, Applied: applied[ver]})
	}
	return out, nil
}

func parseVersion(name string) (int, error) {
	// Expect prefix like 0001_...
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing prefix number")
	}
	return strconv.Atoi(name[:i])
}
