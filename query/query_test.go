package query

import (
	"testing"

	"github.com/wfunc/boardvault/models"
)

func sampleCollection() []models.BoardGame {
	return []models.BoardGame{
		{
			ID: "1", Name: "Catan", MinPlayers: 3, MaxPlayers: 4,
			Playtime: "60-90 min", MinAge: 10,
			Mechanics: []string{"Trading", "Dice Rolling"}, AddedAt: 300,
		},
		{
			ID: "2", Name: "Codenames", MinPlayers: 2, MaxPlayers: 8,
			Playtime: "15 min", MinAge: 14,
			Mechanics: []string{"Word Game", "Team Play"}, AddedAt: 200,
		},
		{
			ID: "3", Name: "Go", MinPlayers: 2, MaxPlayers: 2,
			Playtime: "30-180 min", MinAge: 8,
			Mechanics: []string{"Abstract Strategy"}, AddedAt: 100,
		},
	}
}

func ids(games []models.BoardGame) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_NoOptionsSortsByName(t *testing.T) {
	got := Apply(sampleCollection(), Options{})
	if !equalIDs(ids(got), "1", "2", "3") {
		t.Errorf("Expected name order Catan, Codenames, Go, got %v", ids(got))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	games := sampleCollection()
	Apply(games, Options{SortBy: SortByPlaytime, Order: OrderDesc})
	if !equalIDs(ids(games), "1", "2", "3") {
		t.Errorf("Apply mutated its input: %v", ids(games))
	}
}

func TestApply_SearchMatchesNameAndMechanics(t *testing.T) {
	// "cat" hits the name Catan.
	got := Apply(sampleCollection(), Options{Search: "cat"})
	if !equalIDs(ids(got), "1") {
		t.Errorf("Expected Catan for search 'cat', got %v", ids(got))
	}

	// "word" hits a Codenames mechanic, case-insensitively.
	got = Apply(sampleCollection(), Options{Search: "WORD"})
	if !equalIDs(ids(got), "2") {
		t.Errorf("Expected Codenames for search 'WORD', got %v", ids(got))
	}
}

func TestApply_PlayerFilter(t *testing.T) {
	got := Apply(sampleCollection(), Options{Players: 2})
	if !equalIDs(ids(got), "2", "3") {
		t.Errorf("Expected Codenames and Go for players=2, got %v", ids(got))
	}
}

func TestApply_MaxTimeFilterExcludesUnparseable(t *testing.T) {
	games := append(sampleCollection(), models.BoardGame{
		ID: "4", Name: "Mystery", MinPlayers: 1, MaxPlayers: 4,
		Playtime: "varies", Mechanics: []string{},
	})

	got := Apply(games, Options{MaxTime: 90})
	// Catan max 90 passes, Codenames max 15 passes, Go max 180 fails,
	// "varies" parses to 0 and is dropped while the filter is active.
	if !equalIDs(ids(got), "1", "2") {
		t.Errorf("Expected Catan and Codenames for maxTime=90, got %v", ids(got))
	}
}

func TestApply_MinAgeIsComplexityFloor(t *testing.T) {
	got := Apply(sampleCollection(), Options{MinAge: 10})
	if !equalIDs(ids(got), "1", "2") {
		t.Errorf("Expected games with minAge >= 10, got %v", ids(got))
	}
}

func TestApply_FiltersAreConjunctive(t *testing.T) {
	got := Apply(sampleCollection(), Options{Search: "o", Players: 2, MaxTime: 20})
	// "o" matches Codenames and Go; players=2 keeps both; maxTime=20 keeps
	// only Codenames.
	if !equalIDs(ids(got), "2") {
		t.Errorf("Expected only Codenames, got %v", ids(got))
	}
}

func TestApply_PlayerFilterThenPlaytimeSort(t *testing.T) {
	// End-to-end: filter players=2 then sort by playtime ascending puts
	// Codenames (avg 15) before Go (avg 105).
	got := Apply(sampleCollection(), Options{Players: 2, SortBy: SortByPlaytime, Order: OrderAsc})
	if !equalIDs(ids(got), "2", "3") {
		t.Errorf("Expected Codenames before Go, got %v", ids(got))
	}
}

func TestApply_NameSortReverses(t *testing.T) {
	asc := Apply(sampleCollection(), Options{SortBy: SortByName, Order: OrderAsc})
	desc := Apply(sampleCollection(), Options{SortBy: SortByName, Order: OrderDesc})

	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("Descending order should exactly reverse ascending: %v vs %v", ids(asc), ids(desc))
		}
	}
}

func TestApply_SortByAdded(t *testing.T) {
	got := Apply(sampleCollection(), Options{SortBy: SortByAdded, Order: OrderAsc})
	if !equalIDs(ids(got), "3", "2", "1") {
		t.Errorf("Expected oldest first, got %v", ids(got))
	}
}

func TestApply_Deterministic(t *testing.T) {
	opts := Options{Search: "a", Players: 3, SortBy: SortByPlaytime, Order: OrderDesc}
	a := Apply(sampleCollection(), opts)
	b := Apply(sampleCollection(), opts)

	if len(a) != len(b) {
		t.Fatalf("Two identical queries returned different sizes: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("Two identical queries diverged at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestApply_OutputIsSubsetOfInput(t *testing.T) {
	games := sampleCollection()
	got := Apply(games, Options{Search: "o", MaxTime: 200})

	known := map[string]bool{}
	for _, g := range games {
		known[g.ID] = true
	}
	for _, g := range got {
		if !known[g.ID] {
			t.Errorf("Query invented a record: %s", g.ID)
		}
	}
	if len(got) > len(games) {
		t.Errorf("Filtered output larger than input: %d > %d", len(got), len(games))
	}
}

func TestApply_StableSortPreservesPriorOrder(t *testing.T) {
	games := []models.BoardGame{
		{ID: "a", Name: "Alpha", MinPlayers: 2, MaxPlayers: 4},
		{ID: "b", Name: "Beta", MinPlayers: 2, MaxPlayers: 4},
		{ID: "c", Name: "Gamma", MinPlayers: 2, MaxPlayers: 4},
	}
	// All tie on minPlayers; the incoming order must survive.
	got := Apply(games, Options{SortBy: SortByPlayers})
	if !equalIDs(ids(got), "a", "b", "c") {
		t.Errorf("Stable sort broke tie order: %v", ids(got))
	}
}
