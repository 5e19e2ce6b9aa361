package testutils

import (
	"time"

	questionbankdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/domain"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator creates reproducible test data.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// Address returns a fresh user public key.
func (g *TestDataGenerator) Address() string {
	_, pub, err := signing.NewSigner()
	if err != nil {
		panic(err)
	}
	return pub
}

// Addresses returns n fresh addresses.
func (g *TestDataGenerator) Addresses(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.Address()
	}
	return out
}

// Question returns a valid submission in category.
func (g *TestDataGenerator) Question(category string, difficulty questionbankdomain.Difficulty) questionbankdomain.QuestionInput {
	options := []string{g.faker.City(), g.faker.City(), g.faker.City(), g.faker.City()}
	return questionbankdomain.QuestionInput{
		Text:         g.faker.Question(),
		Options:      options,
		CorrectIndex: uint8(g.faker.IntRange(0, len(options)-1)),
		Category:     category,
		Difficulty:   difficulty,
	}
}

// TournamentName returns a short tournament name.
func (g *TestDataGenerator) TournamentName() string {
	return g.faker.Adjective() + " " + g.faker.Noun() + " Cup"
}
