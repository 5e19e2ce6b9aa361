package tournamentservice

import (
	"bytes"
	"fmt"
	"testing"

	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderStandingsChart(t *testing.T) {
	tests := []struct {
		name    string
		entries []tournamentdomain.Standing
	}{
		{name: "no entries"},
		{name: "no scores", entries: []tournamentdomain.Standing{{Rank: 1, Participant: "UALICE"}}},
		{
			name: "ranked",
			entries: []tournamentdomain.Standing{
				{Rank: 1, Participant: "UALICEALICEALICE", Score: 80},
				{Rank: 2, Participant: "UBOB", Score: 60},
			},
		},
		{name: "truncated", entries: manyStandings(30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := RenderStandingsChart(&Standings{TournamentID: 1, Entries: tt.entries}, 100, DefaultPalette)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic))
		})
	}
}

func manyStandings(n int) []tournamentdomain.Standing {
	out := make([]tournamentdomain.Standing, n)
	for i := range out {
		out[i] = tournamentdomain.Standing{Rank: uint32(i + 1), Participant: fmt.Sprintf("UPLAYER%02d", i), Score: uint32(100 - i)}
	}
	return out
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "UBOB", shortAddress("UBOB"))
	assert.Equal(t, "UALICE..", shortAddress("UALICEALICE"))
}
