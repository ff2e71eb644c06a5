package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/config"
	"ultramdmemo/internal/apppaths"

	_ "modernc.org/sqlite"
)

var ErrSQLiteDisabled = errors.New("sqlite catalog disabled: set HISTORY_CATALOG=true")

// OpenSQLite opens a local SQLite database through the pure-Go driver.
// ":memory:" is passed through untouched.
func OpenSQLite(path string) (*sqlx.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite has a single writer; one connection also keeps an
	// in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// --- Fx output ---

type SQLiteSQLXOut struct {
	fx.Out

	DB *sqlx.DB `name:"catalog"`
}

type NewSQLXSQLiteDBParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Paths  apppaths.Paths
	Logger *zap.SugaredLogger
}

// NewSQLXSQLiteDB opens the history catalog database. A nil DB means the
// catalog is disabled and callers fall back to scanning files.
func NewSQLXSQLiteDB(p NewSQLXSQLiteDBParams) (SQLiteSQLXOut, error) {
	if !p.Cfg.HistoryCatalog {
		p.Logger.Infow("sqlite_catalog_disabled")
		return SQLiteSQLXOut{DB: nil}, nil
	}

	path := strings.TrimSpace(p.Paths.CatalogFile())
	db, err := OpenSQLite(path)
	if err != nil {
		return SQLiteSQLXOut{}, err
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				_ = db.Close()
				return fmt.Errorf("ping sqlite catalog: %w", err)
			}
			p.Logger.Infow("sqlite_catalog_enabled", "path", path)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				p.Logger.Warnw("sqlite_catalog_close_failed", "err", err)
			}
			return nil
		},
	})

	return SQLiteSQLXOut{DB: db}, nil
}
