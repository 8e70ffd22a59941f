package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestMappingRepositoryCRUD(t *testing.T) {
	repo := NewMappingRepository(newTestDB(t))

	mapping := models.NewPersistedMapping(0, "src-1", "spotify-1", models.AlgorithmBasic, 0.9)
	if err := repo.Create(mapping); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if mapping.ID() == "" {
		t.Error("Create did not assign an id")
	}
	if mapping.Sequence() == 0 {
		t.Error("Create did not assign a sequence")
	}

	got, err := repo.Get(mapping.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SourceID() != "src-1" || got.TargetID() != "spotify-1" || got.Algorithm() != models.AlgorithmBasic {
		t.Errorf("Get = %s/%s/%s", got.SourceID(), got.TargetID(), got.Algorithm())
	}
	if !got.Matched() {
		t.Error("Matched() = false for a mapping with a target")
	}

	got.SetTargetID("spotify-2")
	got.SetConfidence(1.0)
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	bySource, err := repo.GetBySourceID("src-1")
	if err != nil {
		t.Fatalf("GetBySourceID: %v", err)
	}
	if bySource.TargetID() != "spotify-2" || bySource.Confidence() != 1.0 {
		t.Errorf("after update: %s / %v", bySource.TargetID(), bySource.Confidence())
	}

	if err := repo.Delete(got.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(got.ID()); !errors.Is(err, shared.ErrMappingNotFound) {
		t.Errorf("Get after delete = %v, want ErrMappingNotFound", err)
	}
}

func TestMappingRepositoryGetMissing(t *testing.T) {
	repo := NewMappingRepository(newTestDB(t))

	if _, err := repo.GetBySourceID("absent"); !errors.Is(err, shared.ErrMappingNotFound) {
		t.Errorf("GetBySourceID = %v, want ErrMappingNotFound", err)
	}
}

func TestMappingRepositoryList(t *testing.T) {
	repo := NewMappingRepository(newTestDB(t))

	entries := []*models.PersistedMapping{
		models.NewPersistedMapping(0, "src-1", "spotify-1", models.AlgorithmBasic, 1.0),
		models.NewPersistedMapping(0, "src-2", "", models.AlgorithmBasic, 0),
		models.NewPersistedMapping(0, "src-3", "spotify-3", models.AlgorithmManual, 1.0),
	}
	for _, m := range entries {
		if err := repo.Create(m); err != nil {
			t.Fatalf("Create(%s): %v", m.SourceID(), err)
		}
	}

	all, err := repo.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List = %d entries, want 3", len(all))
	}
	if all[0].SourceID() != "src-1" || all[2].SourceID() != "src-3" {
		t.Error("List not in sequence order")
	}

	manual, err := repo.List(map[string]any{"algorithm": models.AlgorithmManual})
	if err != nil {
		t.Fatalf("List(manual): %v", err)
	}
	if len(manual) != 1 || manual[0].SourceID() != "src-3" {
		t.Errorf("List(manual) = %v", manual)
	}

	misses, err := repo.List(map[string]any{"matched": false})
	if err != nil {
		t.Fatalf("List(misses): %v", err)
	}
	if len(misses) != 1 || misses[0].SourceID() != "src-2" {
		t.Errorf("List(misses) = %v", misses)
	}
}

func TestMappingRepositoryClear(t *testing.T) {
	repo := NewMappingRepository(newTestDB(t))

	for _, m := range []*models.PersistedMapping{
		models.NewPersistedMapping(0, "src-1", "spotify-1", models.AlgorithmBasic, 1.0),
		models.NewPersistedMapping(0, "src-2", "spotify-2", models.AlgorithmBasic, 1.0),
		models.NewPersistedMapping(0, "src-3", "spotify-3", models.AlgorithmManual, 1.0),
	} {
		if err := repo.Create(m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	cleared, err := repo.ClearByAlgorithm(models.AlgorithmBasic)
	if err != nil {
		t.Fatalf("ClearByAlgorithm: %v", err)
	}
	if cleared != 2 {
		t.Errorf("cleared = %d, want 2", cleared)
	}

	// Manual selections survive an automatic-algorithm clear.
	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}

	cleared, err = repo.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if cleared != 1 {
		t.Errorf("ClearAll = %d, want 1", cleared)
	}
}

func TestMappingCache(t *testing.T) {
	cache := NewMappingCache(NewMappingRepository(newTestDB(t)))

	mapping, err := cache.Lookup("src-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if mapping != nil {
		t.Fatalf("Lookup on empty cache = %v, want nil", mapping)
	}

	remap, err := cache.ShouldRemap("src-1", false)
	if err != nil {
		t.Fatalf("ShouldRemap: %v", err)
	}
	if !remap {
		t.Error("ShouldRemap = false for an uncached track")
	}

	if err := cache.Store("src-1", "spotify-1", "", 0.8); err != nil {
		t.Fatalf("Store: %v", err)
	}

	mapping, err = cache.Lookup("src-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if mapping == nil || mapping.TargetID() != "spotify-1" {
		t.Fatalf("Lookup = %v, want cached match", mapping)
	}
	if mapping.Algorithm() != models.AlgorithmBasic {
		t.Errorf("empty algorithm stored as %q, want basic default", mapping.Algorithm())
	}

	remap, err = cache.ShouldRemap("src-1", false)
	if err != nil {
		t.Fatalf("ShouldRemap: %v", err)
	}
	if remap {
		t.Error("ShouldRemap = true for a cached track")
	}
	if remap, _ = cache.ShouldRemap("src-1", true); !remap {
		t.Error("ShouldRemap = false with force set")
	}

	// Re-storing replaces rather than duplicates.
	if err := cache.Store("src-1", "spotify-9", models.AlgorithmManual, 1.0); err != nil {
		t.Fatalf("Store (replace): %v", err)
	}
	mapping, _ = cache.Lookup("src-1")
	if mapping.TargetID() != "spotify-9" || mapping.Algorithm() != models.AlgorithmManual {
		t.Errorf("replace = %s/%s", mapping.TargetID(), mapping.Algorithm())
	}
	if count, _ := cache.Count(); count != 1 {
		t.Errorf("Count = %d after replace, want 1", count)
	}
}

func TestMappingCacheStoresMisses(t *testing.T) {
	cache := NewMappingCache(NewMappingRepository(newTestDB(t)))

	if err := cache.Store("src-1", "", "", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	mapping, err := cache.Lookup("src-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if mapping == nil {
		t.Fatal("miss was not cached")
	}
	if mapping.Matched() {
		t.Error("Matched() = true for a cached miss")
	}

	// A cached miss still counts as cached: no remap until forced.
	if remap, _ := cache.ShouldRemap("src-1", false); remap {
		t.Error("ShouldRemap = true for a cached miss")
	}
}
