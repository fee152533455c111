package state

import (
	"path/filepath"
	"testing"

	"github.com/heatstack/heatplan/pkg/report"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return store
}

func TestStore_OpenClose(t *testing.T) {
	store := NewStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatplan.db")

	store := NewStore()
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", "100"); err != nil {
		t.Fatalf("failed to save value: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Reopen and verify the value survived.
	store = NewStore()
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if got := values[8]["monthlyData.october.plan"]; got != "100" {
		t.Errorf("expected persisted value %q, got %q", "100", got)
	}
}

func TestStore_NotOpened(t *testing.T) {
	store := NewStore()
	if err := store.InitSchema(); err == nil {
		t.Error("expected error for InitSchema on unopened store")
	}
	if err := store.SaveValue("t", "p", 1, "f", "v"); err == nil {
		t.Error("expected error for SaveValue on unopened store")
	}
	if _, err := store.TableValues("t", "p"); err == nil {
		t.Error("expected error for TableValues on unopened store")
	}
}

func TestStore_SaveValueUpsert(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", "100"); err != nil {
		t.Fatalf("failed to save value: %v", err)
	}
	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", "120.5"); err != nil {
		t.Fatalf("failed to overwrite value: %v", err)
	}

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if got := values[8]["monthlyData.october.plan"]; got != "120.5" {
		t.Errorf("expected overwritten value %q, got %q", "120.5", got)
	}
}

func TestStore_SaveValueEmptyDeletes(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", "100"); err != nil {
		t.Fatalf("failed to save value: %v", err)
	}
	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", ""); err != nil {
		t.Fatalf("failed to clear value: %v", err)
	}

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected no values after clearing, got %v", values)
	}
}

func TestStore_RawTextPreserved(t *testing.T) {
	store := setupTestStore(t)

	// Non-numeric text is stored as entered; validation flags it later.
	if err := store.SaveValue("plant-east", "2025-2026", 8, "monthlyData.october.plan", "abc"); err != nil {
		t.Fatalf("failed to save value: %v", err)
	}

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if got := values[8]["monthlyData.october.plan"]; got != "abc" {
		t.Errorf("expected raw text %q, got %q", "abc", got)
	}
}

func TestStore_SaveValuesBatch(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveValue("plant-east", "2025-2026", 9, "monthlyData.october.plan", "old"); err != nil {
		t.Fatalf("failed to seed value: %v", err)
	}

	batch := report.TableValues{
		8: {
			"monthlyData.october.plan":  "100",
			"monthlyData.november.plan": "110",
		},
		9: {
			"monthlyData.october.plan": "", // clears the seeded value
		},
	}
	if err := store.SaveValues("plant-east", "2025-2026", batch); err != nil {
		t.Fatalf("failed to save batch: %v", err)
	}

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if got := values[8]["monthlyData.november.plan"]; got != "110" {
		t.Errorf("expected batch value %q, got %q", "110", got)
	}
	if _, ok := values[9]; ok {
		t.Errorf("expected metric 9 cleared by empty batch value, got %v", values[9])
	}
}

func TestStore_ScopedByTableAndPeriod(t *testing.T) {
	store := setupTestStore(t)

	entries := []struct {
		table, period, field, value string
		metric                      int
	}{
		{"plant-east", "2025-2026", "monthlyData.october.plan", "100", 8},
		{"plant-west", "2025-2026", "monthlyData.october.plan", "200", 8},
		{"plant-east", "2026-2027", "monthlyData.october.plan", "300", 8},
	}
	for _, e := range entries {
		if err := store.SaveValue(e.table, e.period, e.metric, e.field, e.value); err != nil {
			t.Fatalf("failed to save value: %v", err)
		}
	}

	values, err := store.TableValues("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load values: %v", err)
	}
	if got := values[8]["monthlyData.october.plan"]; got != "100" {
		t.Errorf("expected scoped value %q, got %q", "100", got)
	}

	set, err := store.PeriodValues("2025-2026")
	if err != nil {
		t.Fatalf("failed to load period values: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 tables for period, got %d", len(set))
	}
	if got := set["plant-west"][8]["monthlyData.october.plan"]; got != "200" {
		t.Errorf("expected plant-west value %q, got %q", "200", got)
	}
	if _, ok := set["plant-east"][8]["monthlyData.november.plan"]; ok {
		t.Error("unexpected value leaked from another period")
	}
}

func TestStore_Submissions(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.RecordSubmission("plant-east", "2025-2026", 2, 1, "first try")
	if err != nil {
		t.Fatalf("failed to record submission: %v", err)
	}
	if first.ID == "" {
		t.Error("submission ID should not be empty")
	}
	if first.SubmittedAt.IsZero() {
		t.Error("submission timestamp should be set")
	}

	second, err := store.RecordSubmission("plant-east", "2025-2026", 0, 0, "fixed")
	if err != nil {
		t.Fatalf("failed to record submission: %v", err)
	}
	if second.ID == first.ID {
		t.Error("submission IDs should be unique")
	}

	subs, err := store.Submissions("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load submissions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}

	latest, err := store.LatestSubmission("plant-east", "2025-2026")
	if err != nil {
		t.Fatalf("failed to load latest submission: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest submission")
	}
	if latest.HardFindings != 0 || latest.Note != "fixed" {
		t.Errorf("expected the second submission as latest, got %+v", latest)
	}

	none, err := store.LatestSubmission("plant-west", "2025-2026")
	if err != nil {
		t.Fatalf("failed to query empty history: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for table without submissions, got %+v", none)
	}
}
