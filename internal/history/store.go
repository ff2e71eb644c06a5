package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/pkg/atomicfile"
)

const (
	inputSuffix  = ".input.txt"
	outputSuffix = ".output.md"
	metaSuffix   = ".meta.json"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type StoreConfig struct {
	Dir string
	// Catalog is optional. The files stay authoritative either way.
	Catalog *Catalog
	Logger  *zap.SugaredLogger
}

// Store keeps each record as {id}.input.txt, {id}.output.md and {id}.meta.json.
type Store struct {
	dir     string
	catalog *Catalog
	logger  *zap.SugaredLogger
}

func NewStore(cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{dir: cfg.Dir, catalog: cfg.Catalog, logger: logger}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Paths(id string) Paths {
	return Paths{
		Input:  filepath.Join(s.dir, id+inputSuffix),
		Output: filepath.Join(s.dir, id+outputSuffix),
		Meta:   filepath.Join(s.dir, id+metaSuffix),
	}
}

func checkID(id string) error {
	if !validID.MatchString(id) {
		return apperr.NewInvalidRequest(fmt.Sprintf("invalid history id %q", id))
	}
	return nil
}

// Save writes input, output, then meta. The meta file goes last so a
// record only shows up in LoadIndex once all three exist.
func (s *Store) Save(ctx context.Context, id string, input string, output string, meta Meta) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	paths := s.Paths(id)
	if err := atomicfile.WriteFile(paths.Input, []byte(input), 0o644); err != nil {
		return fmt.Errorf("save input: %w", err)
	}
	if err := atomicfile.WriteFile(paths.Output, []byte(output), 0o644); err != nil {
		return fmt.Errorf("save output: %w", err)
	}

	meta = meta.normalized()
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := atomicfile.WriteFile(paths.Meta, b, 0o644); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if s.catalog != nil {
		if err := s.catalog.Upsert(ctx, meta); err != nil {
			s.logger.Warnw("history_catalog_upsert_failed", "id", id, "err", err)
		}
	}
	return nil
}

// LoadIndex returns every readable meta record, newest first. Corrupt or
// unreadable meta files are skipped.
func (s *Store) LoadIndex(ctx context.Context) ([]Meta, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+metaSuffix))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	items := make([]Meta, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, err := readMeta(f)
		if err != nil {
			s.logger.Warnw("history_meta_skipped", "path", f, "err", err)
			continue
		}
		items = append(items, meta)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Load(ctx context.Context, id string) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := s.Paths(id)
	meta, err := readMeta(paths.Meta)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NewNotFound("history " + id)
		}
		return nil, fmt.Errorf("load meta %s: %w", id, err)
	}
	input, err := os.ReadFile(paths.Input)
	if err != nil {
		return nil, fmt.Errorf("load input %s: %w", id, err)
	}
	output, err := os.ReadFile(paths.Output)
	if err != nil {
		return nil, fmt.Errorf("load output %s: %w", id, err)
	}

	return &Entry{Input: string(input), Output: string(output), Meta: meta}, nil
}

// Delete removes whichever of the three files exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	paths := s.Paths(id)
	// Meta first: a half-deleted record must not stay listed.
	for _, p := range []string{paths.Meta, paths.Input, paths.Output} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}

	if s.catalog != nil {
		if err := s.catalog.Delete(ctx, id); err != nil {
			s.logger.Warnw("history_catalog_delete_failed", "id", id, "err", err)
		}
	}
	return nil
}

// Search matches query against titles, case-insensitively, newest first.
func (s *Store) Search(ctx context.Context, query string) ([]Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.LoadIndex(ctx)
	}

	if s.catalog != nil {
		ids, err := s.catalog.SearchIDs(ctx, query)
		if err == nil {
			out := make([]Meta, 0, len(ids))
			for _, id := range ids {
				meta, err := readMeta(s.Paths(id).Meta)
				if err != nil {
					s.logger.Debugw("history_search_stale_entry", "id", id, "err", err)
					continue
				}
				out = append(out, meta)
			}
			return out, nil
		}
		s.logger.Warnw("history_catalog_search_failed", "err", err)
	}

	all, err := s.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]Meta, 0)
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
		}
	}
	return out, nil
}

// ErrCatalogDisabled is returned by Reindex when no catalog is configured.
var ErrCatalogDisabled = errors.New("history catalog disabled")

// Reindex rebuilds the catalog from the meta files.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, ErrCatalogDisabled
	}
	metas, err := s.LoadIndex(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.Rebuild(ctx, metas); err != nil {
		return 0, err
	}
	s.logger.Infow("history_catalog_rebuilt", "entries", len(metas))
	return len(metas), nil
}

// Migrations reports the catalog schema state.
func (s *Store) Migrations(ctx context.Context) ([]MigrationStatus, error) {
	if s.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return s.catalog.Migrations(ctx)
}

func readMeta(path string) (Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(b, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if meta.ID == "" {
		return Meta{}, fmt.Errorf("decode %s: missing id", filepath.Base(path))
	}
	return meta.normalized(), nil
}
