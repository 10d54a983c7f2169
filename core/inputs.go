package core

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// CreateUserInput contains the data needed to register a new user
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in CreateUserInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	))
}

// UpdateUserInput is a partial update; nil fields are left untouched
type UpdateUserInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func (in UpdateUserInput) Validate() error {
	if in.Name == nil && in.Email == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.EmailFormat),
	))
}

var difficulties = []any{"easy", "medium", "hard"}

var submissionStatuses = []any{SubmissionAccepted, SubmissionRejected, SubmissionPending}

type SubmissionInput struct {
	ProblemID  string `json:"problemId"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
	Language   string `json:"language,omitempty"`
}

func (in SubmissionInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.ProblemID, validation.Required),
		validation.Field(&in.Difficulty, validation.Required, validation.In(difficulties...)),
		validation.Field(&in.Status, validation.Required, validation.In(submissionStatuses...)),
		validation.Field(&in.Language, validation.Length(0, 32)),
	))
}

// ScoreInput carries the difficulty of a solved problem
type ScoreInput struct {
	Difficulty string `json:"difficulty"`
}

var scoreByDifficulty = map[string]int{
	"easy":   2,
	"medium": 3,
	"hard":   5,
}

// Points returns the score awarded for the difficulty, 0 when unknown
func (in ScoreInput) Points() int {
	return scoreByDifficulty[strings.ToLower(strings.TrimSpace(in.Difficulty))]
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
}
