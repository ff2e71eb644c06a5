package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"ultramdmemo/db"
	"ultramdmemo/internal/history/migrations"
)

// ErrCatalogUnavailable is returned until Migrate has succeeded.
var ErrCatalogUnavailable = errors.New("history catalog unavailable")

const searchLimit = 200

// Catalog is a SQLite mirror of the meta files used for listing and title
// search. It can always be rebuilt from disk.
type Catalog struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
	ready  atomic.Bool
}

type catalogRow struct {
	ID           string `db:"id"`
	CreatedAtMs  int64  `db:"created_at_ms"`
	Title        string `db:"title"`
	Intent       string `db:"intent"`
	Mode         string `db:"mode"`
	IncludeRaw   bool   `db:"include_raw"`
	TitleHint    string `db:"title_hint"`
	InputChars   int    `db:"input_chars"`
	DurationMs   int64  `db:"duration_ms"`
	WarningCount int    `db:"warning_count"`
}

func rowFromMeta(m Meta) catalogRow {
	return catalogRow{
		ID:           m.ID,
		CreatedAtMs:  m.CreatedAt.UnixMilli(),
		Title:        m.Title,
		Intent:       m.Intent,
		Mode:         m.Mode,
		IncludeRaw:   m.IncludeRaw,
		TitleHint:    m.TitleHint,
		InputChars:   m.InputChars,
		DurationMs:   m.DurationMs,
		WarningCount: len(m.Warnings),
	}
}

const upsertSQL = `
INSERT INTO history_entries (
  id, created_at_ms, title, intent, mode, include_raw, title_hint, input_chars, duration_ms, warning_count
) VALUES (
  :id, :created_at_ms, :title, :intent, :mode, :include_raw, :title_hint, :input_chars, :duration_ms, :warning_count
)
ON CONFLICT(id) DO UPDATE SET
  created_at_ms = excluded.created_at_ms,
  title = excluded.title,
  intent = excluded.intent,
  mode = excluded.mode,
  include_raw = excluded.include_raw,
  title_hint = excluded.title_hint,
  input_chars = excluded.input_chars,
  duration_ms = excluded.duration_ms,
  warning_count = excluded.warning_count`

// NewCatalog wraps an open database. The caller owns sqlDB.
func NewCatalog(sqlDB *sqlx.DB, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Catalog{db: sqlDB, logger: logger}
}

// OpenCatalog opens the SQLite file at path and migrates it. Close releases
// the underlying database.
func OpenCatalog(ctx context.Context, path string, logger *zap.SugaredLogger) (*Catalog, error) {
	sqlDB, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	c := NewCatalog(sqlDB, logger)
	if err := c.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return c, nil
}

// Migrate applies the embedded goose migrations.
func (c *Catalog) Migrate(ctx context.Context) error {
	if c.db == nil {
		return ErrCatalogUnavailable
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, c.db.DB, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	c.logger.Debugw("goose_run_start", "cmd", "up")
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		c.logger.Infow("goose_migration_applied", "version", r.Source.Version, "duration", r.Duration.String())
	}
	c.logger.Debugw("goose_run_done", "cmd", "up", "applied", len(results))

	c.ready.Store(true)
	return nil
}

// MigrationStatus is one embedded migration and whether it has run.
type MigrationStatus struct {
	Version   int64
	Source    string
	Applied   bool
	AppliedAt time.Time
}

// Migrations reports the state of every embedded migration.
func (c *Catalog) Migrations(ctx context.Context) ([]MigrationStatus, error) {
	if c.db == nil {
		return nil, ErrCatalogUnavailable
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, c.db.DB, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationStatus{
			Version:   st.Source.Version,
			Source:    filepath.Base(st.Source.Path),
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

func (c *Catalog) Ready() bool { return c != nil && c.ready.Load() }

func (c *Catalog) Close() error {
	c.ready.Store(false)
	return c.db.Close()
}

func (c *Catalog) Upsert(ctx context.Context, m Meta) error {
	if !c.ready.Load() {
		return ErrCatalogUnavailable
	}
	if _, err := c.db.NamedExecContext(ctx, upsertSQL, rowFromMeta(m)); err != nil {
		return fmt.Errorf("upsert %s: %w", m.ID, err)
	}
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if !c.ready.Load() {
		return ErrCatalogUnavailable
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM history_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// SearchIDs returns ids whose title contains query, newest first.
func (c *Catalog) SearchIDs(ctx context.Context, query string) ([]string, error) {
	if !c.ready.Load() {
		return nil, ErrCatalogUnavailable
	}
	var ids []string
	err := c.db.SelectContext(ctx, &ids,
		`SELECT id FROM history_entries
		 WHERE title LIKE ? ESCAPE '\'
		 ORDER BY created_at_ms DESC
		 LIMIT ?`,
		"%"+escapeLike(query)+"%", searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return ids, nil
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	if !c.ready.Load() {
		return 0, ErrCatalogUnavailable
	}
	var n int
	if err := c.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM history_entries`); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

// Rebuild replaces the catalog contents with metas in one transaction.
func (c *Catalog) Rebuild(ctx context.Context, metas []Meta) error {
	if !c.ready.Load() {
		return ErrCatalogUnavailable
	}
	_, err := db.Tx(ctx, c.db, func(tx *sqlx.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
			return 0, fmt.Errorf("clear catalog: %w", err)
		}
		for _, m := range metas {
			if _, err := tx.NamedExecContext(ctx, upsertSQL, rowFromMeta(m)); err != nil {
				return 0, fmt.Errorf("insert %s: %w", m.ID, err)
			}
		}
		return len(metas), nil
	})
	if err != nil {
		return fmt.Errorf("rebuild catalog: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
