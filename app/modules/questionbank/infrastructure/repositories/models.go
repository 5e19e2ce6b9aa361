package questionbankdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// State is the singleton Question Bank account.
type State struct {
	bun.BaseModel     `bun:"table:question_bank_state,alias:qbs"`
	Address           uuid.UUID `bun:"address,pk,type:uuid" json:"address"`
	Authority         string    `bun:"authority,notnull" json:"authority"`
	Curators          []string  `bun:"curators,array,notnull" json:"curators"`
	TotalQuestions    uint64    `bun:"total_questions,notnull" json:"total_questions"`
	ApprovedQuestions uint64    `bun:"approved_questions,notnull" json:"approved_questions"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// IsCurator reports whether address is in the curator set.
func (s *State) IsCurator(address string) bool {
	for _, c := range s.Curators {
		if c == address {
			return true
		}
	}
	return false
}

// Question is a submitted trivia question and its tally.
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:q"`
	ID            uint64     `bun:"id,pk" json:"id"`
	Address       uuid.UUID  `bun:"address,type:uuid,notnull,unique" json:"address"`
	Text          string     `bun:"text,notnull" json:"text"`
	Options       []string   `bun:"options,array,notnull" json:"options"`
	CorrectIndex  uint8      `bun:"correct_index,notnull" json:"correct_index"`
	Category      string     `bun:"category,notnull" json:"category"`
	Difficulty    uint8      `bun:"difficulty,notnull" json:"difficulty"`
	Approvals     uint32     `bun:"approvals,notnull" json:"approvals"`
	Rejections    uint32     `bun:"rejections,notnull" json:"rejections"`
	Status        string     `bun:"status,notnull" json:"status"`
	Submitter     string     `bun:"submitter,notnull" json:"submitter"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	FinalizedAt   *time.Time `bun:"finalized_at" json:"finalized_at,omitempty"`
}

// Vote is one curator's vote. Its address is derived from voter and question, so the
// primary key rejects a second vote.
type Vote struct {
	bun.BaseModel `bun:"table:question_votes,alias:qv"`
	Address       uuid.UUID `bun:"address,pk,type:uuid" json:"address"`
	QuestionID    uint64    `bun:"question_id,notnull" json:"question_id"`
	Voter         string    `bun:"voter,notnull" json:"voter"`
	Approve       bool      `bun:"approve,notnull" json:"approve"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Reputation tracks a user's curation standing.
type Reputation struct {
	bun.BaseModel      `bun:"table:user_reputations,alias:ur"`
	Owner              string    `bun:"owner,pk" json:"owner"`
	Address            uuid.UUID `bun:"address,type:uuid,notnull,unique" json:"address"`
	Score              int64     `bun:"score,notnull" json:"score"`
	CorrectVotes       uint32    `bun:"correct_votes,notnull" json:"correct_votes"`
	IncorrectVotes     uint32    `bun:"incorrect_votes,notnull" json:"incorrect_votes"`
	QuestionsSubmitted uint32    `bun:"questions_submitted,notnull" json:"questions_submitted"`
	QuestionsApproved  uint32    `bun:"questions_approved,notnull" json:"questions_approved"`
	UpdatedAt          time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// ApprovedFilter narrows approved-question queries. Zero values match everything.
type ApprovedFilter struct {
	Category   string
	Difficulty uint8
	Limit      int
}
