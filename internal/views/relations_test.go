package views

import (
	"testing"

	"logbook/termbook/internal/audit"
	"logbook/termbook/internal/models"
)

func newTestRelationsModel(t *testing.T) *RelationsModel {
	t.Helper()
	activity, err := audit.NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create activity logger: %v", err)
	}
	return NewRelationsModel(nil, activity)
}

func TestStaleLoadCompletionDropped(t *testing.T) {
	m := newTestRelationsModel(t)
	m.generation = 2
	m.relations = []models.Relation{{ID: "r1", Name: "Current"}}
	m.applyFilter()

	// A completion from an abandoned fetch carries an older generation
	// and must not overwrite the newer list.
	stale := relationsLoadedMsg{
		generation: 1,
		relations:  []models.Relation{{ID: "old", Name: "Stale"}},
	}
	updated, _ := m.Update(stale)

	if len(updated.relations) != 1 || updated.relations[0].Name != "Current" {
		t.Errorf("Expected stale completion to be dropped, got %v", updated.relations)
	}
}

func TestCurrentLoadCompletionApplied(t *testing.T) {
	m := newTestRelationsModel(t)
	m.generation = 3
	m.loading = true

	fresh := relationsLoadedMsg{
		generation: 3,
		relations:  []models.Relation{{ID: "r1", Name: "Alice"}, {ID: "r2", Name: "Bob"}},
	}
	updated, _ := m.Update(fresh)

	if updated.loading {
		t.Error("Expected loading to clear on matching generation")
	}
	if len(updated.relations) != 2 {
		t.Errorf("Expected 2 relations applied, got %d", len(updated.relations))
	}
}

func TestReloadBumpsGeneration(t *testing.T) {
	m := newTestRelationsModel(t)

	before := m.generation
	cmd := m.Reload()
	if cmd == nil {
		t.Fatal("Expected reload to return a command")
	}
	if m.generation != before+1 {
		t.Errorf("Expected generation bump, got %d -> %d", before, m.generation)
	}
	if !m.loading {
		t.Error("Expected loading flag set")
	}
}

func TestFilterByNameAndCategory(t *testing.T) {
	m := newTestRelationsModel(t)
	m.relations = []models.Relation{
		{ID: "r1", Name: "Alice", CategoryType: models.CategoryWork},
		{ID: "r2", Name: "Albert", CategoryType: models.CategoryFriends},
		{ID: "r3", Name: "Bob", CategoryType: models.CategoryWork},
	}

	m.filterInput.SetValue("al")
	m.applyFilter()
	if len(m.filtered) != 2 {
		t.Fatalf("Expected 2 name matches, got %d", len(m.filtered))
	}

	// Category Work is index 0 in the category cycle.
	m.categoryIdx = 0
	m.applyFilter()
	if len(m.filtered) != 1 || m.filtered[0].Name != "Alice" {
		t.Errorf("Expected category filter to narrow to Alice, got %v", m.filtered)
	}
}

func TestFilterSortsByName(t *testing.T) {
	m := newTestRelationsModel(t)
	m.relations = []models.Relation{
		{ID: "r1", Name: "zoe"},
		{ID: "r2", Name: "Alice"},
		{ID: "r3", Name: "bob"},
	}
	m.applyFilter()

	if m.filtered[0].Name != "Alice" || m.filtered[1].Name != "bob" || m.filtered[2].Name != "zoe" {
		t.Errorf("Expected case-insensitive name sort, got %v", m.filtered)
	}
}

func TestSelectionClampedAfterFilter(t *testing.T) {
	m := newTestRelationsModel(t)
	m.relations = []models.Relation{
		{ID: "r1", Name: "Alice"},
		{ID: "r2", Name: "Bob"},
	}
	m.applyFilter()
	m.selected = 1

	m.filterInput.SetValue("alice")
	m.applyFilter()

	if m.selected != 0 {
		t.Errorf("Expected selection reset when it falls off the list, got %d", m.selected)
	}
}
