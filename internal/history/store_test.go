package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.DBPath = filepath.Join(dir, "nested", "history-test.db")
	cfg.Retention = 24 * time.Hour
	cfg.PruneInterval = time.Hour

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{ID: "01A", Kind: "sales", Format: "pdf", Source: SourceAPI, Filename: "Sales_Report_2026-10-19.pdf", Pages: 3, Bytes: 4096, CreatedAt: base},
		{ID: "01B", Kind: "full", Format: "csv", Source: SourceUpload, Filename: "Full_Business_Report_2026-10-19.csv", Bytes: 900, CreatedAt: base.Add(time.Minute)},
		{ID: "01C", Kind: "sales", Format: "pdf", Source: SourceAPI, Error: "upstream timeout", RequestID: "req-1", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s): %v", e.ID, err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "01C" || got[1].ID != "01B" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Succeeded() || got[0].RequestID != "req-1" {
		t.Errorf("failed entry not round-tripped: %+v", got[0])
	}
	if !got[1].CreatedAt.Equal(base.Add(time.Minute)) || got[1].Source != SourceUpload {
		t.Errorf("entry fields not round-tripped: %+v", got[1])
	}
}

func TestStoreRecordRequiresID(t *testing.T) {
	store := newTestStore(t)
	if err := store.Record(context.Background(), Entry{Kind: "sales"}); err == nil {
		t.Fatal("expected an error for an entry without id")
	}
}

func TestStoreRecordDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	e := Entry{ID: "dup", Kind: "sales", Format: "pdf", Source: SourceFile}
	if err := store.Record(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, e); err == nil {
		t.Fatal("expected a duplicate id to be rejected")
	}
}

func TestStoreRetention(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	_ = store.Record(ctx, Entry{ID: "old", Kind: "sales", Format: "pdf", Source: SourceAPI, CreatedAt: now.Add(-48 * time.Hour)})
	_ = store.Record(ctx, Entry{ID: "new", Kind: "sales", Format: "pdf", Source: SourceAPI, CreatedAt: now.Add(-time.Hour)})

	if deleted := store.runRetention(now); deleted != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", deleted)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("unexpected entries after pruning: %+v", got)
	}
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(StoreConfig{DBPath: filepath.Join(dir, "h.db")})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
