package scoring

import (
	"cmp"
	"slices"

	"github.com/mcoot/chinquiz/internal/model"
)

// PenaltySeconds is the number of seconds each wrong guess adds to a score.
// Every surface that shows or ranks by score uses this weight.
const PenaltySeconds = 15

// Score combines elapsed time and penalties into a single rank key where lower
// is better: whole seconds (rounded down) plus PenaltySeconds per penalty
func Score(totalTimeMs, penalties int64) int64 {
	return totalTimeMs/1000 + penalties*PenaltySeconds
}

// ScoreEntry recomputes the derived score of an entry from its raw fields
func ScoreEntry(entry *model.LeaderboardEntry) int64 {
	return Score(entry.TotalTimeMs, entry.Penalties)
}

// Rank returns a copy of entries with every Score recomputed, sorted by score
// ascending. Entries with equal scores keep their relative order.
func Rank(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	ranked := make([]model.LeaderboardEntry, len(entries))
	for i := range entries {
		ranked[i] = entries[i]
		ranked[i].Score = ScoreEntry(&ranked[i])
	}
	slices.SortStableFunc(ranked, func(a, b model.LeaderboardEntry) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return ranked
}
