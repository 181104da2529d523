package services

import (
	"sort"

	"reelvote/models"
)

// BoardEntry is one leaderboard row. Share is the game's fraction of the
// current maximum count, used by clients as the bar width.
type BoardEntry struct {
	GameID uint    `json:"game_id"`
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
}

// BuildBoard orders games by descending count and computes each game's
// share of the maximum. The sort is stable so tied counts keep their input
// order. With all counts zero every share is exactly 0.0 (the denominator
// is clamped to 1, never the shares).
func BuildBoard(games []models.Game) []BoardEntry {
	max := 0
	for _, g := range games {
		if g.Count > max {
			max = g.Count
		}
	}
	denom := max
	if denom < 1 {
		denom = 1
	}

	entries := make([]BoardEntry, len(games))
	for i, g := range games {
		entries[i] = BoardEntry{
			GameID: g.ID,
			Name:   g.Name,
			Count:  g.Count,
			Share:  float64(g.Count) / float64(denom),
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

// FilterVisible applies the featured-flag gate: admins see every game,
// everyone else only the featured ones.
func FilterVisible(games []models.Game, isAdmin bool) []models.Game {
	if isAdmin {
		return games
	}
	visible := []models.Game{}
	for _, g := range games {
		if g.Featured {
			visible = append(visible, g)
		}
	}
	return visible
}
