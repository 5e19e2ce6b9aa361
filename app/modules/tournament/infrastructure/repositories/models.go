package tournamentdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// State is the singleton Tournament Manager account.
type State struct {
	bun.BaseModel   `bun:"table:tournament_manager_state,alias:tms"`
	Address         uuid.UUID `bun:"address,pk,type:uuid" json:"address"`
	Authority       string    `bun:"authority,notnull" json:"authority"`
	TournamentCount uint64    `bun:"tournament_count,notnull" json:"tournament_count"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Tournament is one tournament and its escrow bookkeeping. Vault is the ledger holder that
// keeps the entry fees.
type Tournament struct {
	bun.BaseModel   `bun:"table:tournaments,alias:t"`
	ID              uint64     `bun:"id,pk" json:"id"`
	Address         uuid.UUID  `bun:"address,type:uuid,notnull,unique" json:"address"`
	Organizer       string     `bun:"organizer,notnull" json:"organizer"`
	Name            string     `bun:"name,notnull" json:"name"`
	Description     string     `bun:"description,notnull" json:"description"`
	EntryFee        uint64     `bun:"entry_fee,notnull" json:"entry_fee"`
	PrizePool       uint64     `bun:"prize_pool,notnull" json:"prize_pool"`
	Asset           string     `bun:"asset,notnull" json:"asset"`
	Vault           string     `bun:"vault,notnull" json:"vault"`
	MaxParticipants uint32     `bun:"max_participants,notnull" json:"max_participants"`
	RegisteredCount uint32     `bun:"registered_count,notnull" json:"registered_count"`
	SubmittedCount  uint32     `bun:"submitted_count,notnull" json:"submitted_count"`
	StartTime       time.Time  `bun:"start_time,notnull" json:"start_time"`
	DurationSeconds int64      `bun:"duration_seconds,notnull" json:"duration_seconds"`
	ActualStart     *time.Time `bun:"actual_start" json:"actual_start,omitempty"`
	EndedAt         *time.Time `bun:"ended_at" json:"ended_at,omitempty"`
	QuestionCount   uint8      `bun:"question_count,notnull" json:"question_count"`
	Category        string     `bun:"category,notnull" json:"category,omitempty"`
	Difficulty      *uint8     `bun:"difficulty" json:"difficulty,omitempty"`
	Status          string     `bun:"status,notnull" json:"status"`
	PrizeReleased   bool       `bun:"prize_released,notnull" json:"prize_released"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Duration is the playing window measured from the actual start.
func (t *Tournament) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// EndsAt is when score submission closes, or the zero time before the tournament starts.
func (t *Tournament) EndsAt() time.Time {
	if t.ActualStart == nil {
		return time.Time{}
	}
	return t.ActualStart.Add(t.Duration())
}

// Registration is one participant's seat. Its address is derived from tournament and
// participant, so the primary key rejects a second registration.
type Registration struct {
	bun.BaseModel  `bun:"table:tournament_registrations,alias:tr"`
	Address        uuid.UUID  `bun:"address,pk,type:uuid" json:"address"`
	TournamentID   uint64     `bun:"tournament_id,notnull" json:"tournament_id"`
	Participant    string     `bun:"participant,notnull" json:"participant"`
	PaidFee        uint64     `bun:"paid_fee,notnull" json:"paid_fee"`
	Seq            uint64     `bun:"seq,notnull" json:"seq"`
	Score          uint32     `bun:"score,notnull" json:"score"`
	ScoreSubmitted bool       `bun:"score_submitted,notnull" json:"score_submitted"`
	FinalRank      *uint32    `bun:"final_rank" json:"final_rank,omitempty"`
	Refunded       bool       `bun:"refunded,notnull" json:"refunded"`
	RegisteredAt   time.Time  `bun:"registered_at,notnull" json:"registered_at"`
	SubmittedAt    *time.Time `bun:"submitted_at" json:"submitted_at,omitempty"`
}

// ListFilter narrows tournament listings. An empty Status matches all.
type ListFilter struct {
	Status string
	Limit  int
}
