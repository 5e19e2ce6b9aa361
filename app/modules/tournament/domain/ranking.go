package tournamentdomain

import (
	"sort"
	"time"
)

// Entry is one registration as seen by the ranking.
type Entry struct {
	Participant  string
	Score        uint32
	RegisteredAt time.Time
	Seq          uint64
}

// Standing is a ranked entry. Ranks start at 1 and are unique.
type Standing struct {
	Rank        uint32 `json:"rank"`
	Participant string `json:"participant"`
	Score       uint32 `json:"score"`
}

// Rank orders entries by score descending, breaking ties by earliest registration and then
// by registration sequence. Participants without a submitted score rank with zero.
func Rank(entries []Entry) []Standing {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return a.RegisteredAt.Before(b.RegisteredAt)
		}
		return a.Seq < b.Seq
	})

	out := make([]Standing, len(sorted))
	for i, e := range sorted {
		out[i] = Standing{Rank: uint32(i + 1), Participant: e.Participant, Score: e.Score}
	}
	return out
}
