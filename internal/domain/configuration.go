package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Difficulty filters questions by difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType filters questions by answer format.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple"
	QuestionTypeBoolean        QuestionType = "boolean"
)

const (
	MinQuestionCount     = 1
	MaxQuestionCount     = 50
	DefaultQuestionCount = 10
)

// QuizConfiguration is what the user picks before an attempt. Nil optional
// fields mean "any".
type QuizConfiguration struct {
	QuestionCount int           `json:"questionCount" yaml:"questionCount" validate:"min=1,max=50"`
	CategoryID    *int          `json:"categoryId,omitempty" yaml:"categoryId" validate:"omitempty,gt=0"`
	Difficulty    *Difficulty   `json:"difficulty,omitempty" yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionType  *QuestionType `json:"type,omitempty" yaml:"type" validate:"omitempty,oneof=multiple boolean"`
}

// DefaultConfiguration returns ten questions of any category, difficulty and type.
func DefaultConfiguration() QuizConfiguration {
	return QuizConfiguration{QuestionCount: DefaultQuestionCount}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the numeric and enum constraints. The returned error wraps
// ErrInvalidConfiguration.
func (c QuizConfiguration) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "QuestionCount":
		if fe.Tag() == "min" {
			return fmt.Sprintf("number of questions must be at least %d", MinQuestionCount)
		}
		return fmt.Sprintf("number of questions must be at most %d", MaxQuestionCount)
	case "CategoryID":
		return "category must be a positive id"
	case "Difficulty":
		return "difficulty must be one of easy, medium, hard"
	case "QuestionType":
		return "type must be one of multiple, boolean"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Params converts the configuration into a question source request.
func (c QuizConfiguration) Params() QuestionParams {
	c = c.Clone()
	return QuestionParams{
		Amount:     c.QuestionCount,
		Category:   c.CategoryID,
		Difficulty: c.Difficulty,
		Type:       c.QuestionType,
	}
}

// Clone copies the optional fields so the result shares no pointers with c.
func (c QuizConfiguration) Clone() QuizConfiguration {
	out := QuizConfiguration{QuestionCount: c.QuestionCount}
	if c.CategoryID != nil {
		out.CategoryID = Ptr(*c.CategoryID)
	}
	if c.Difficulty != nil {
		out.Difficulty = Ptr(*c.Difficulty)
	}
	if c.QuestionType != nil {
		out.QuestionType = Ptr(*c.QuestionType)
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
