package collection

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}

// MockPersistence is a test double for the Persistence interface.
// It records saved snapshots and can be primed with load data or errors.
type MockPersistence struct {
	LoadData  []interface{}
	LoadErr   error
	SaveErr   error
	Saved     [][]models.BoardGame
	SaveCalls chan struct{}
	mutex     sync.Mutex
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{SaveCalls: make(chan struct{}, 16)}
}

func (m *MockPersistence) Load(ctx context.Context) ([]interface{}, error) {
	return m.LoadData, m.LoadErr
}

func (m *MockPersistence) Save(ctx context.Context, games []models.BoardGame) error {
	m.mutex.Lock()
	m.Saved = append(m.Saved, games)
	m.mutex.Unlock()
	select {
	case m.SaveCalls <- struct{}{}:
	default:
	}
	return m.SaveErr
}

func (m *MockPersistence) waitForSave(t *testing.T) {
	t.Helper()
	select {
	case <-m.SaveCalls:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected an asynchronous save, none happened")
	}
}

func newTestStore(t *testing.T) (*Store, *MockPersistence) {
	t.Helper()
	p := NewMockPersistence()
	s := NewStore(p)
	t.Cleanup(s.Close)
	return s, p
}

func sampleForm(name string) models.GameFormData {
	return models.GameFormData{
		Name:       name,
		MinPlayers: 2,
		MaxPlayers: 4,
		Playtime:   "30-60 min",
		MinAge:     8,
		Mechanics:  []string{"Strategy"},
	}
}

func TestStore_CreatePrependsAndAssignsIdentity(t *testing.T) {
	s, p := newTestStore(t)

	first := s.Create(sampleForm("Carcassonne"), nil)
	second := s.Create(sampleForm("Azul"), nil)

	if first.ID == "" || second.ID == "" {
		t.Error("Created games must get non-empty ids")
	}
	if first.ID == second.ID {
		t.Error("Created games must get unique ids")
	}
	if first.AddedAt == 0 {
		t.Error("Created games must get a creation timestamp")
	}
	if first.Expansions == nil || first.Mechanics == nil {
		t.Error("Collection fields must never be nil")
	}

	games := s.Games()
	if len(games) != 2 || games[0].Name != "Azul" || games[1].Name != "Carcassonne" {
		t.Errorf("Expected newest-first order, got %v", games)
	}

	p.waitForSave(t)
}

func TestStore_CreateFillsExpansionDescription(t *testing.T) {
	s, _ := newTestStore(t)

	game := s.Create(sampleForm("Catan"), []models.Expansion{{Name: "Seafarers"}})
	if len(game.Expansions) != 1 {
		t.Fatalf("Expected one expansion, got %d", len(game.Expansions))
	}
	if game.Expansions[0].Description != models.DefaultExpansionDescription {
		t.Errorf("Expected placeholder description, got %q", game.Expansions[0].Description)
	}
}

func TestStore_UpdateKeepsIdentityAndTimestamp(t *testing.T) {
	s, _ := newTestStore(t)

	created := s.Create(sampleForm("Catan"), nil)

	form := sampleForm("Catan: Renamed")
	form.MinPlayers = 3
	updated, ok := s.Update(created.ID, form, []models.Expansion{{Name: "Cities", Description: "Knights"}})
	if !ok {
		t.Fatal("Update of an existing id should succeed")
	}
	if updated.ID != created.ID {
		t.Error("Update must not reassign the id")
	}
	if updated.AddedAt != created.AddedAt {
		t.Error("Update must not touch the creation timestamp")
	}
	if updated.Name != "Catan: Renamed" || updated.MinPlayers != 3 {
		t.Errorf("Update did not replace form fields: %+v", updated)
	}
	if len(updated.Expansions) != 1 || updated.Expansions[0].Name != "Cities" {
		t.Errorf("Update did not replace expansions: %+v", updated.Expansions)
	}
}

func TestStore_UpdateUnknownIdIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create(sampleForm("Catan"), nil)

	if _, ok := s.Update("missing", sampleForm("x"), nil); ok {
		t.Error("Update of an unknown id must report failure")
	}
	if s.Games()[0].Name != "Catan" {
		t.Error("Update of an unknown id must leave the collection untouched")
	}
}

func TestStore_DeleteRemovesExactlyOneKeepingOrder(t *testing.T) {
	s, _ := newTestStore(t)
	s.ReplaceAll([]interface{}{
		map[string]interface{}{"id": "a", "name": "A"},
		map[string]interface{}{"id": "b", "name": "B"},
		map[string]interface{}{"id": "c", "name": "C"},
	})

	if !s.Delete("b") {
		t.Fatal("Delete of an existing id should succeed")
	}

	games := s.Games()
	if len(games) != 2 || games[0].ID != "a" || games[1].ID != "c" {
		t.Errorf("Expected [a c] in original order, got %v", games)
	}

	if s.Delete("b") {
		t.Error("Deleting the same id twice should fail the second time")
	}
}

func TestStore_ReplaceAllIsFullOverwrite(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create(sampleForm("Old Game"), nil)

	games := s.ReplaceAll([]interface{}{
		map[string]interface{}{"name": "Imported"},
	})

	if len(games) != 1 || games[0].Name != "Imported" {
		t.Fatalf("Expected the import to replace everything, got %v", games)
	}
	if _, found := find(s.Games(), "Old Game"); found {
		t.Error("Records absent from a bulk replacement must be gone")
	}
}

func TestStore_LoadNormalizesOnce(t *testing.T) {
	p := NewMockPersistence()
	p.LoadData = []interface{}{
		map[string]interface{}{"id": float64(42), "name": "Numeric ID"},
		map[string]interface{}{"name": "No ID"},
	}
	s := NewStore(p)
	defer s.Close()

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	games := s.Games()
	if len(games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(games))
	}
	if games[0].ID != "42" {
		t.Errorf("Numeric id should be coerced to text, got %q", games[0].ID)
	}
	if games[1].ID == "" {
		t.Error("Missing id should be generated")
	}
	if len(p.Saved) != 0 {
		t.Error("Load must not trigger a save")
	}
}

func TestStore_LoadPropagatesGatewayError(t *testing.T) {
	p := NewMockPersistence()
	p.LoadErr = errors.New("disk on fire")
	s := NewStore(p)
	defer s.Close()

	if err := s.Load(context.Background()); err == nil {
		t.Error("Expected the gateway error to propagate")
	}
}

func TestStore_FlushSurfacesSaveFailure(t *testing.T) {
	s, p := newTestStore(t)
	p.SaveErr = errors.New("no space left")

	if err := s.Flush(context.Background()); err == nil {
		t.Error("Flush must surface save failures")
	}
}

func TestStore_MutationSaveIsFireAndForget(t *testing.T) {
	s, p := newTestStore(t)
	p.SaveErr = errors.New("no space left")

	// The mutation itself must not fail even though the save will.
	game := s.Create(sampleForm("Catan"), nil)
	p.waitForSave(t)

	if _, ok := s.Get(game.ID); !ok {
		t.Error("In-memory state must survive a failed save")
	}
}

func find(games []models.BoardGame, name string) (models.BoardGame, bool) {
	for _, g := range games {
		if g.Name == name {
			return g, true
		}
	}
	return models.BoardGame{}, false
}
