package collection

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wfunc/boardvault/models"
)

// Normalize turns loosely-typed candidate records (imported JSON, legacy
// storage, AI merges) into valid BoardGames. It never fails: every candidate
// gets a textual id (generated when missing), mechanics and ownedExpansions
// are never nil, and all other fields are decoded best-effort with malformed
// values accepted as-is. Non-object entries are skipped.
func Normalize(raw []interface{}) []models.BoardGame {
	games := make([]models.BoardGame, 0, len(raw))

	for _, entry := range raw {
		record, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		record["id"] = coerceID(record["id"])
		if _, ok := record["ownedExpansions"].([]interface{}); !ok {
			record["ownedExpansions"] = []interface{}{}
		}
		if _, ok := record["mechanics"].([]interface{}); !ok {
			record["mechanics"] = []interface{}{}
		}

		var game models.BoardGame
		data, err := json.Marshal(record)
		if err == nil {
			// A type mismatch aborts neither the record nor the batch;
			// the offending field just keeps its zero value.
			_ = json.Unmarshal(data, &game)
		}
		if game.ID == "" {
			game.ID = record["id"].(string)
		}
		if game.Mechanics == nil {
			game.Mechanics = []string{}
		}
		if game.Expansions == nil {
			game.Expansions = []models.Expansion{}
		}

		games = append(games, game)
	}

	return games
}

// coerceID keeps an existing id as text, tolerating numeric ids from
// imported data, and generates a fresh uuid otherwise.
func coerceID(v interface{}) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		// JSON numbers decode as float64; integral ids render without
		// a fraction.
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%v", id)
	case nil:
	default:
		return fmt.Sprintf("%v", id)
	}
	return uuid.New().String()
}

// NormalizeGames re-runs the gap-filling rules over already-typed records.
// Used when merging AI responses or form data built in memory.
func NormalizeGames(games []models.BoardGame) []models.BoardGame {
	out := make([]models.BoardGame, len(games))
	copy(out, games)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
		}
		if out[i].Mechanics == nil {
			out[i].Mechanics = []string{}
		}
		if out[i].Expansions == nil {
			out[i].Expansions = []models.Expansion{}
		}
	}
	return out
}
