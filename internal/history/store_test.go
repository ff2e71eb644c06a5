package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ultramdmemo/internal/apperr"
)

func newTestStore(t *testing.T, catalog *Catalog) *Store {
	t.Helper()
	return NewStore(StoreConfig{Dir: t.TempDir(), Catalog: catalog})
}

func sampleMeta(s *Store, id string, title string, createdAt time.Time) Meta {
	return Meta{
		ID:         id,
		CreatedAt:  createdAt,
		Title:      title,
		Intent:     "meeting",
		Mode:       "balanced",
		IncludeRaw: true,
		TitleHint:  "weekly",
		InputChars: 5,
		DurationMs: 1234,
		Warnings:   []string{"必須セクションが見つかりません: 不明点"},
		Paths:      s.Paths(id),
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	meta := sampleMeta(s, "20240101_100000_abcdef", "2024-01-01 10:00_Test", created)

	require.NoError(t, s.Save(ctx, meta.ID, "hello", "# 2024-01-01 10:00_Test\n", meta))

	entry, err := s.Load(ctx, meta.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", entry.Input)
	require.Equal(t, "# 2024-01-01 10:00_Test\n", entry.Output)
	require.Equal(t, meta, entry.Meta)

	for _, p := range []string{meta.Paths.Input, meta.Paths.Output, meta.Paths.Meta} {
		require.FileExists(t, p)
	}
}

func TestStore_SaveNormalizesNilWarnings(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()
	meta := sampleMeta(s, "a1", "t", time.Now().UTC())
	meta.Warnings = nil

	require.NoError(t, s.Save(ctx, meta.ID, "in", "out", meta))

	b, err := os.ReadFile(s.Paths("a1").Meta)
	require.NoError(t, err)
	require.Contains(t, string(b), `"warnings": []`)
}

func TestStore_LoadIndexSkipsCorruptAndSortsNewestFirst(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	saves := []struct {
		id     string
		offset time.Duration
	}{
		{"older", 0},
		{"newest", 2 * time.Hour},
		{"middle", time.Hour},
	}
	for _, sv := range saves {
		require.NoError(t, s.Save(ctx, sv.id, "in", "out", sampleMeta(s, sv.id, sv.id, base.Add(sv.offset))))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.meta.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "noid.meta.json"), []byte(`{"title":"x"}`), 0o644))

	items, err := s.LoadIndex(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "newest", items[0].ID)
	require.Equal(t, "middle", items[1].ID)
	require.Equal(t, "older", items[2].ID)
}

func TestStore_LoadIndexEmptyDir(t *testing.T) {
	t.Parallel()

	s := NewStore(StoreConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	items, err := s.LoadIndex(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestStore_DeleteRemovesFiles(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()
	meta := sampleMeta(s, "gone", "t", time.Now().UTC())
	require.NoError(t, s.Save(ctx, meta.ID, "in", "out", meta))

	require.NoError(t, s.Delete(ctx, meta.ID))
	require.NoFileExists(t, meta.Paths.Meta)
	require.NoFileExists(t, meta.Paths.Input)
	require.NoFileExists(t, meta.Paths.Output)

	// Deleting again is not an error.
	require.NoError(t, s.Delete(ctx, meta.ID))

	_, err := s.Load(ctx, meta.ID)
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestStore_RejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()

	for _, id := range []string{"", "../etc", "a/b", "a b", `a\b`} {
		_, err := s.Load(ctx, id)
		require.True(t, apperr.Is(err, apperr.InvalidRequest), "id %q: %v", id, err)
		require.True(t, apperr.Is(s.Delete(ctx, id), apperr.InvalidRequest), "id %q", id)
	}
}

func TestStore_SearchWithoutCatalog(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, "m1", "in", "out", sampleMeta(s, "m1", "2024-05-01 00:00_Design Review", base)))
	require.NoError(t, s.Save(ctx, "m2", "in", "out", sampleMeta(s, "m2", "2024-05-01 01:00_standup", base.Add(time.Hour))))
	require.NoError(t, s.Save(ctx, "m3", "in", "out", sampleMeta(s, "m3", "2024-05-01 02:00_design notes", base.Add(2*time.Hour))))

	got, err := s.Search(ctx, "DESIGN")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "m3", got[0].ID)
	require.Equal(t, "m1", got[1].ID)

	all, err := s.Search(ctx, "   ")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStore_ReindexWithoutCatalog(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil)
	_, err := s.Reindex(context.Background())
	require.ErrorIs(t, err, ErrCatalogDisabled)
}
