// Package questionbankdbtest provides an in-memory questionbank store for tests.
package questionbankdbtest

import (
	"context"
	"sort"
	"sync"

	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository is a questionbankdb.Repository held in maps. Rows are copied on the way
// in and out, so callers never share memory with the store. It ignores the db handle.
type MemoryRepository struct {
	mu          sync.Mutex
	state       *questionbankdb.State
	questions   map[uint64]questionbankdb.Question
	votes       map[uuid.UUID]questionbankdb.Vote
	reputations map[string]questionbankdb.Reputation
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		questions:   make(map[uint64]questionbankdb.Question),
		votes:       make(map[uuid.UUID]questionbankdb.Vote),
		reputations: make(map[string]questionbankdb.Reputation),
	}
}

func copyState(s *questionbankdb.State) *questionbankdb.State {
	c := *s
	c.Curators = append([]string(nil), s.Curators...)
	return &c
}

func copyQuestion(q questionbankdb.Question) questionbankdb.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func (m *MemoryRepository) GetState(_ context.Context, _ bun.IDB, _ bool) (*questionbankdb.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, questionbankdb.ErrNotFound
	}
	return copyState(m.state), nil
}

func (m *MemoryRepository) CreateState(_ context.Context, _ bun.IDB, state *questionbankdb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		return questionbankdb.ErrDuplicate
	}
	m.state = copyState(state)
	return nil
}

func (m *MemoryRepository) UpdateState(_ context.Context, _ bun.IDB, state *questionbankdb.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return questionbankdb.ErrNotFound
	}
	m.state = copyState(state)
	return nil
}

func (m *MemoryRepository) CreateQuestion(_ context.Context, _ bun.IDB, q *questionbankdb.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; ok {
		return questionbankdb.ErrDuplicate
	}
	m.questions[q.ID] = copyQuestion(*q)
	return nil
}

func (m *MemoryRepository) GetQuestion(_ context.Context, _ bun.IDB, id uint64, _ bool) (*questionbankdb.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, questionbankdb.ErrNotFound
	}
	c := copyQuestion(q)
	return &c, nil
}

func (m *MemoryRepository) UpdateQuestion(_ context.Context, _ bun.IDB, q *questionbankdb.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return questionbankdb.ErrNotFound
	}
	m.questions[q.ID] = copyQuestion(*q)
	return nil
}

func (m *MemoryRepository) approved(filter questionbankdb.ApprovedFilter) []questionbankdb.Question {
	var out []questionbankdb.Question
	for _, q := range m.questions {
		if q.Status != "approved" {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Difficulty != 0 && q.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, copyQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryRepository) ListApproved(_ context.Context, _ bun.IDB, filter questionbankdb.ApprovedFilter) ([]questionbankdb.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.approved(filter)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) ListPending(_ context.Context, _ bun.IDB) ([]questionbankdb.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []questionbankdb.Question
	for _, q := range m.questions {
		if q.Status == "pending" {
			out = append(out, copyQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) CountApproved(_ context.Context, _ bun.IDB, filter questionbankdb.ApprovedFilter) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.approved(filter))), nil
}

func (m *MemoryRepository) CreateVote(_ context.Context, _ bun.IDB, vote *questionbankdb.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[vote.Address]; ok {
		return questionbankdb.ErrDuplicate
	}
	m.votes[vote.Address] = *vote
	return nil
}

func (m *MemoryRepository) ListVotes(_ context.Context, _ bun.IDB, questionID uint64) ([]questionbankdb.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []questionbankdb.Vote
	for _, v := range m.votes {
		if v.QuestionID == questionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) GetReputation(_ context.Context, _ bun.IDB, owner string) (*questionbankdb.Reputation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reputations[owner]
	if !ok {
		return nil, questionbankdb.ErrNotFound
	}
	return &rep, nil
}

func (m *MemoryRepository) UpsertReputation(_ context.Context, _ bun.IDB, rep *questionbankdb.Reputation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reputations[rep.Owner] = *rep
	return nil
}

var _ questionbankdb.Repository = (*MemoryRepository)(nil)
