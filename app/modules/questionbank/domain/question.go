// Package questionbankdomain holds the curation rules: question validation, quorum and
// reputation arithmetic.
package questionbankdomain

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"
)

// Bounds keep a question row near 900 bytes.
const (
	MinOptions     = 2
	MaxOptions     = 4
	MaxTextLen     = 400
	MaxOptionLen   = 80
	MaxCategoryLen = 32
	MaxCurators    = 20

	// PointsPerCorrectAnswer is the score a tournament awards per question.
	PointsPerCorrectAnswer = 10
)

// Difficulty is the enumerated question difficulty.
type Difficulty uint8

const (
	Easy   Difficulty = 1
	Medium Difficulty = 2
	Hard   Difficulty = 3
)

// Valid reports whether d is one of the enumerated difficulties.
func (d Difficulty) Valid() bool { return d >= Easy && d <= Hard }

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// Status is the curation state of a question.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Validation failures. The application layer maps them to coded errors.
var (
	ErrEmptyText         = errors.New("question text is empty")
	ErrTextTooLong       = errors.New("question text too long")
	ErrOptionCount       = errors.New("a question needs 2 to 4 options")
	ErrEmptyOption       = errors.New("option is empty")
	ErrOptionTooLong     = errors.New("option too long")
	ErrCorrectIndex      = errors.New("correct answer index out of range")
	ErrInvalidDifficulty = errors.New("difficulty must be 1, 2 or 3")
	ErrInvalidCategory   = errors.New("category is empty or too long")
)

// Options is a bounded option list with an explicit count.
type Options struct {
	Values [MaxOptions]string
	Count  uint8
}

// NewOptions copies opts into a fixed array, validating count and lengths.
func NewOptions(opts []string) (Options, error) {
	var o Options
	if len(opts) < MinOptions || len(opts) > MaxOptions {
		return o, ErrOptionCount
	}
	for i, opt := range opts {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return o, ErrEmptyOption
		}
		if len(opt) > MaxOptionLen {
			return o, ErrOptionTooLong
		}
		o.Values[i] = opt
	}
	o.Count = uint8(len(opts))
	return o, nil
}

// Slice returns the populated options.
func (o Options) Slice() []string {
	out := make([]string, o.Count)
	copy(out, o.Values[:o.Count])
	return out
}

// QuestionInput is a submitted question before validation.
type QuestionInput struct {
	Text         string     `json:"text"`
	Options      []string   `json:"options"`
	CorrectIndex uint8      `json:"correct_index"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
}

// Question is a validated submission.
type Question struct {
	Text         string
	Options      Options
	CorrectIndex uint8
	Category     string
	Difficulty   Difficulty
}

// Validate checks the input and normalizes text and category.
func Validate(in QuestionInput) (Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Question{}, ErrEmptyText
	}
	if len(text) > MaxTextLen {
		return Question{}, ErrTextTooLong
	}

	opts, err := NewOptions(in.Options)
	if err != nil {
		return Question{}, err
	}
	if in.CorrectIndex >= opts.Count {
		return Question{}, ErrCorrectIndex
	}
	if !in.Difficulty.Valid() {
		return Question{}, ErrInvalidDifficulty
	}

	category, err := NormalizeCategory(in.Category)
	if err != nil {
		return Question{}, err
	}

	return Question{
		Text:         text,
		Options:      opts,
		CorrectIndex: in.CorrectIndex,
		Category:     category,
		Difficulty:   in.Difficulty,
	}, nil
}

// NormalizeCategory turns a free-form category into its slug, e.g. "World History" into
// "world-history". Queries use the same normalization.
func NormalizeCategory(category string) (string, error) {
	s := slug.Make(category)
	if s == "" || len(s) > MaxCategoryLen {
		return "", ErrInvalidCategory
	}
	return s, nil
}
