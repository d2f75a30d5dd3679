// Package query derives the displayed list from the full collection.
//
// Apply is purely functional: it never mutates its input and is fully
// deterministic for identical inputs, so it can be recomputed on every
// keystroke. All passes are linear except the final stable sort.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wfunc/boardvault/models"
	"github.com/wfunc/boardvault/playtime"
)

type SortBy string

const (
	SortByName     SortBy = "name"
	SortByPlayers  SortBy = "players"
	SortByPlaytime SortBy = "playtime"
	SortByAdded    SortBy = "added"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Options 查询条件（搜索+过滤+排序）
// A zero filter value means the filter is inactive.
type Options struct {
	Search  string `json:"search"`
	Players int    `json:"players"`
	MaxTime int    `json:"maxTime"`
	MinAge  int    `json:"minAge"`
	SortBy  SortBy `json:"sortBy"`
	Order   Order  `json:"order"`
}

// Apply runs the search/filter/sort pipeline, in that order, over games.
// Filters are conjunctive. The sort is stable, so ties keep the relative
// order of the prior pipeline stage.
func Apply(games []models.BoardGame, opts Options) []models.BoardGame {
	result := make([]models.BoardGame, len(games))
	copy(result, games)

	// 1. Search: name or any mechanic contains the term.
	if opts.Search != "" {
		term := strings.ToLower(opts.Search)
		result = filter(result, func(g models.BoardGame) bool {
			if strings.Contains(strings.ToLower(g.Name), term) {
				return true
			}
			for _, m := range g.Mechanics {
				if strings.Contains(strings.ToLower(m), term) {
					return true
				}
			}
			return false
		})
	}

	// 2. Player count: games that support exactly this many players.
	if opts.Players > 0 {
		p := opts.Players
		result = filter(result, func(g models.BoardGame) bool {
			return g.MinPlayers <= p && g.MaxPlayers >= p
		})
	}

	// 3. Max duration: upper bound of the parsed playtime must fit.
	// Games whose playtime text has no digits parse to max 0 and are
	// excluded once this filter is active.
	if opts.MaxTime > 0 {
		t := opts.MaxTime
		result = filter(result, func(g models.BoardGame) bool {
			max := playtime.Parse(g.Playtime).Max
			return max > 0 && max <= t
		})
	}

	// 4. Minimum age, read as a complexity floor: keep games rated for at
	// least this age, not games safe below it.
	if opts.MinAge > 0 {
		a := opts.MinAge
		result = filter(result, func(g models.BoardGame) bool {
			return g.MinAge >= a
		})
	}

	// 5. Sort.
	sortGames(result, opts.SortBy, opts.Order)

	return result
}

func filter(games []models.BoardGame, keep func(models.BoardGame) bool) []models.BoardGame {
	out := games[:0]
	for _, g := range games {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

func sortGames(games []models.BoardGame, by SortBy, order Order) {
	desc := order == OrderDesc

	var compare func(a, b models.BoardGame) int

	switch by {
	case SortByPlayers:
		compare = func(a, b models.BoardGame) int {
			return a.MinPlayers - b.MinPlayers
		}
	case SortByPlaytime:
		compare = func(a, b models.BoardGame) int {
			avgA := playtime.Parse(a.Playtime).Avg
			avgB := playtime.Parse(b.Playtime).Avg
			switch {
			case avgA < avgB:
				return -1
			case avgA > avgB:
				return 1
			}
			return 0
		}
	case SortByAdded:
		compare = func(a, b models.BoardGame) int {
			switch {
			case a.AddedAt < b.AddedAt:
				return -1
			case a.AddedAt > b.AddedAt:
				return 1
			}
			return 0
		}
	default: // SortByName
		c := collate.New(language.Und, collate.IgnoreCase)
		compare = func(a, b models.BoardGame) int {
			return c.CompareString(a.Name, b.Name)
		}
	}

	sort.SliceStable(games, func(i, j int) bool {
		cmp := compare(games[i], games[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
