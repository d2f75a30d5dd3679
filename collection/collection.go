// Package collection holds the authoritative in-memory game list and its
// mutation operations. Every mutation schedules an asynchronous persistence
// save through a single-writer queue; only the newest pending snapshot is
// kept, so a burst of edits collapses into one write.
package collection

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
	"github.com/wfunc/boardvault/query"
)

// Persistence 持久化接口（由 persistence.Gateway 实现）
type Persistence interface {
	Load(ctx context.Context) ([]interface{}, error)
	Save(ctx context.Context, games []models.BoardGame) error
}

type Store struct {
	persist  Persistence
	games    []models.BoardGame
	onChange func(games []models.BoardGame)
	mutex    sync.RWMutex

	saveCh chan []models.BoardGame
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewStore(p Persistence) *Store {
	s := &Store{
		persist: p,
		games:   []models.BoardGame{},
		saveCh:  make(chan []models.BoardGame, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.saver()
	return s
}

// Load populates the store from the persistence gateway. Normalization
// happens here, once, at startup; the gateway returns tiers as-is.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.games = Normalize(raw)
	s.mutex.Unlock()

	s.notify()
	return nil
}

// Games returns a snapshot copy of the full collection.
func (s *Store) Games() []models.BoardGame {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.BoardGame, len(s.games))
	copy(out, s.games)
	return out
}

// Get finds a record by id, compared as text.
func (s *Store) Get(id string) (models.BoardGame, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, g := range s.games {
		if g.ID == id {
			return g, true
		}
	}
	return models.BoardGame{}, false
}

// Query runs the search/filter/sort pipeline over a snapshot.
func (s *Store) Query(opts query.Options) []models.BoardGame {
	return query.Apply(s.Games(), opts)
}

// Len reports the collection size.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.games)
}

// Create assigns a fresh id and creation timestamp and prepends the record.
func (s *Store) Create(form models.GameFormData, expansions []models.Expansion) models.BoardGame {
	game := models.BoardGame{
		ID:         uuid.New().String(),
		Expansions: sanitizeExpansions(expansions),
		AddedAt:    time.Now().UnixMilli(),
	}
	form.Apply(&game)
	if game.Mechanics == nil {
		game.Mechanics = []string{}
	}

	s.mutex.Lock()
	s.games = append([]models.BoardGame{game}, s.games...)
	s.mutex.Unlock()

	s.scheduleSave()
	s.notify()
	return game
}

// Update replaces every field except id and addedAt. Unknown ids are a no-op.
func (s *Store) Update(id string, form models.GameFormData, expansions []models.Expansion) (models.BoardGame, bool) {
	s.mutex.Lock()
	var updated models.BoardGame
	found := false
	for i := range s.games {
		if s.games[i].ID != id {
			continue
		}
		form.Apply(&s.games[i])
		if s.games[i].Mechanics == nil {
			s.games[i].Mechanics = []string{}
		}
		s.games[i].Expansions = sanitizeExpansions(expansions)
		updated = s.games[i]
		found = true
		break
	}
	s.mutex.Unlock()

	if !found {
		return models.BoardGame{}, false
	}

	s.scheduleSave()
	s.notify()
	return updated, true
}

// Delete removes the record whose id matches, leaving the rest in their
// original relative order.
func (s *Store) Delete(id string) bool {
	s.mutex.Lock()
	found := false
	kept := s.games[:0]
	for _, g := range s.games {
		if !found && g.ID == id {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	s.games = kept
	s.mutex.Unlock()

	if !found {
		return false
	}

	s.scheduleSave()
	s.notify()
	return true
}

// ReplaceAll normalizes the raw payload and overwrites the whole collection.
// This is a full replace, not a merge: records absent from the payload are
// gone. Used by both the file-import and JSON-editor save paths.
func (s *Store) ReplaceAll(raw []interface{}) []models.BoardGame {
	games := Normalize(raw)

	s.mutex.Lock()
	s.games = games
	s.mutex.Unlock()

	s.scheduleSave()
	s.notify()
	return games
}

// Flush writes the current snapshot synchronously. Callers that need save
// failures surfaced (import, shutdown) use this instead of relying on the
// fire-and-forget queue.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.Save(ctx, s.Games())
}

// SetOnChange registers a callback invoked with a snapshot after every
// mutation and after the initial load.
func (s *Store) SetOnChange(fn func(games []models.BoardGame)) {
	s.mutex.Lock()
	s.onChange = fn
	s.mutex.Unlock()
}

// Close stops the background saver. Pending saves are abandoned; callers
// wanting a final write use Flush first.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Store) notify() {
	s.mutex.RLock()
	fn := s.onChange
	s.mutex.RUnlock()
	if fn != nil {
		fn(s.Games())
	}
}

// scheduleSave queues the current snapshot, dropping any older pending one.
// Last write wins; ordering against an in-flight save is handled by the
// single saver goroutine.
func (s *Store) scheduleSave() {
	snapshot := s.Games()
	for {
		select {
		case s.saveCh <- snapshot:
			return
		case <-s.done:
			return
		default:
		}
		// Queue full: discard the stale snapshot and retry.
		select {
		case <-s.saveCh:
		default:
		}
	}
}

func (s *Store) saver() {
	defer s.wg.Done()
	for {
		select {
		case snapshot := <-s.saveCh:
			if err := s.persist.Save(context.Background(), snapshot); err != nil {
				// The in-memory state is not rolled back; the user keeps
				// working with unsaved-but-visible changes.
				logger.Log.Errorf("Failed to save collection: %v", err)
			}
		case <-s.done:
			return
		}
	}
}

func sanitizeExpansions(expansions []models.Expansion) []models.Expansion {
	out := make([]models.Expansion, 0, len(expansions))
	for _, e := range expansions {
		if e.Description == "" {
			e.Description = models.DefaultExpansionDescription
		}
		out = append(out, e)
	}
	return out
}
