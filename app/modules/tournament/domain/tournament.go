// Package tournamentdomain holds the tournament rules: parameter validation, score bounds and
// final ranking.
package tournamentdomain

import (
	"errors"
	"math"
	"strings"
	"time"

	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
)

// Bounds keep a tournament row near 700 bytes.
const (
	MaxNameLen        = 64
	MaxDescriptionLen = 400
	MinQuestionCount  = 1
	MaxQuestionCount  = 50
	MaxAmount         = math.MaxInt64
)

// Status is the lifecycle state of a tournament.
type Status string

const (
	StatusRegistration Status = "registration"
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Cancellable reports whether a tournament in s may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusRegistration || s == StatusActive
}

var (
	ErrInvalidName            = errors.New("name must be 1 to 64 bytes")
	ErrInvalidDescription     = errors.New("description must be at most 400 bytes")
	ErrInvalidEntryFee        = errors.New("entry fee out of range")
	ErrInvalidMaxParticipants = errors.New("max participants must be positive")
	ErrInvalidStartTime       = errors.New("start time is in the past")
	ErrInvalidDuration        = errors.New("duration must be at least one second")
	ErrInvalidQuestionCount   = errors.New("question count must be 1 to 50")
	ErrInvalidDifficulty      = errors.New("difficulty must be 1, 2 or 3")
	ErrInvalidCategory        = errors.New("invalid category")
)

// CreateParams are the organizer-supplied tournament parameters.
type CreateParams struct {
	Name            string
	Description     string
	EntryFee        uint64
	MaxParticipants uint32
	StartTime       time.Time
	Duration        time.Duration
	QuestionCount   uint8
	Category        string
	Difficulty      *uint8
}

// Validate checks p against now and returns it with name trimmed and category normalized.
func (p CreateParams) Validate(now time.Time) (CreateParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > MaxNameLen {
		return p, ErrInvalidName
	}
	if len(p.Description) > MaxDescriptionLen {
		return p, ErrInvalidDescription
	}
	if p.EntryFee > MaxAmount {
		return p, ErrInvalidEntryFee
	}
	if p.MaxParticipants == 0 {
		return p, ErrInvalidMaxParticipants
	}
	if p.StartTime.Before(now) {
		return p, ErrInvalidStartTime
	}
	if p.Duration < time.Second {
		return p, ErrInvalidDuration
	}
	if p.QuestionCount < MinQuestionCount || p.QuestionCount > MaxQuestionCount {
		return p, ErrInvalidQuestionCount
	}
	if p.Difficulty != nil && !questionbankdomain.Difficulty(*p.Difficulty).Valid() {
		return p, ErrInvalidDifficulty
	}
	if p.Category != "" {
		c, err := questionbankdomain.NormalizeCategory(p.Category)
		if err != nil {
			return p, ErrInvalidCategory
		}
		p.Category = c
	}
	return p, nil
}

// MaxScore is the highest achievable score for a question count.
func MaxScore(questionCount uint8) uint32 {
	return uint32(questionCount) * questionbankdomain.PointsPerCorrectAnswer
}
