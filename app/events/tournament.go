package events

// ScoreSubmitRequestedPayloadV1 submits a participant's score. The signer must be the
// participant or the organizer.
type ScoreSubmitRequestedPayloadV1 struct {
	TournamentID uint64 `json:"tournament_id"`
	Participant  string `json:"participant"`
	Score        uint32 `json:"score"`
}

// TournamentCompleteRequestedPayloadV1 asks the Tournament Manager to lock scores.
type TournamentCompleteRequestedPayloadV1 struct {
	TournamentID uint64 `json:"tournament_id"`
}

// StandingV1 is one ranked participant.
type StandingV1 struct {
	Rank        uint32 `json:"rank"`
	Participant string `json:"participant"`
	Score       uint32 `json:"score"`
}

// TournamentCompletedPayloadV1 carries the final standings. A reward distribution request
// can be built from it directly.
type TournamentCompletedPayloadV1 struct {
	TournamentID uint64       `json:"tournament_id"`
	PrizePool    uint64       `json:"prize_pool"`
	Standings    []StandingV1 `json:"standings"`
}
