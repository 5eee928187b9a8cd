package store

import (
	"database/sql"
	"os"
	"reflect"
	"testing"
)

func openStagingTestStore(t *testing.T, name string) *Store {
	t.Helper()

	store, err := Open(name)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(name)
		os.Remove(name + "-shm")
		os.Remove(name + "-wal")
	})

	return store
}

func enriched(id int64, name, composer string) *EnrichedTrack {
	e := &EnrichedTrack{
		TrackID:      id,
		Name:         name,
		Milliseconds: 200000,
		UnitPrice:    0.99,
	}
	if composer != "" {
		e.FinalComposer = sql.NullString{Valid: true, String: composer}
	}
	return e
}

func TestReplaceStagingSwapsFullSnapshot(t *testing.T) {
	store := openStagingTestStore(t, "test-staging-swap.db")

	first := []*EnrichedTrack{
		enriched(1, "one", "X"),
		enriched(2, "two", ""),
	}
	if err := store.ReplaceStaging(first); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	count, err := store.CountStaging()
	if err != nil {
		t.Fatalf("failed to count staging: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 staging rows, got %d", count)
	}

	// A second replace must fully supersede the first, not append
	second := []*EnrichedTrack{
		enriched(3, "three", "Y"),
	}
	if err := store.ReplaceStaging(second); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	rows, err := store.GetStagingTracks()
	if err != nil {
		t.Fatalf("failed to read staging: %v", err)
	}
	if len(rows) != 1 || rows[0].TrackID != 3 {
		t.Errorf("expected only track 3 after replace, got %+v", rows)
	}
	if !rows[0].FinalComposer.Valid || rows[0].FinalComposer.String != "Y" {
		t.Errorf("expected final composer Y, got %+v", rows[0].FinalComposer)
	}
}

func TestReplaceStagingRollsBackOnFailure(t *testing.T) {
	store := openStagingTestStore(t, "test-staging-rollback.db")

	prior := []*EnrichedTrack{
		enriched(1, "one", "X"),
		enriched(2, "two", "X"),
		enriched(3, "three", ""),
	}
	if err := store.ReplaceStaging(prior); err != nil {
		t.Fatalf("seed replace failed: %v", err)
	}

	before, err := store.GetStagingTracks()
	if err != nil {
		t.Fatalf("failed to read staging: %v", err)
	}

	// The duplicate track_id violates the primary key mid-insert, which
	// must roll back the whole transaction
	broken := []*EnrichedTrack{
		enriched(10, "ten", "Z"),
		enriched(11, "eleven", "Z"),
		enriched(10, "ten again", "Z"),
	}
	if err := store.ReplaceStaging(broken); err == nil {
		t.Fatal("expected replace with duplicate track_id to fail")
	}

	after, err := store.GetStagingTracks()
	if err != nil {
		t.Fatalf("failed to read staging: %v", err)
	}

	if len(after) != len(before) {
		t.Fatalf("prior snapshot lost: had %d rows, now %d", len(before), len(after))
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("prior snapshot changed after failed replace:\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func TestReplaceStagingEmptySnapshot(t *testing.T) {
	store := openStagingTestStore(t, "test-staging-empty.db")

	if err := store.ReplaceStaging([]*EnrichedTrack{enriched(1, "one", "X")}); err != nil {
		t.Fatalf("seed replace failed: %v", err)
	}

	// Replacing with nothing empties the table
	if err := store.ReplaceStaging(nil); err != nil {
		t.Fatalf("empty replace failed: %v", err)
	}

	count, err := store.CountStaging()
	if err != nil {
		t.Fatalf("failed to count staging: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty staging table, got %d rows", count)
	}
}
