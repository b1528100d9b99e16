package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/cihui/internal/vocab"
)

// Sentinel causes wrapped by ValidationError.
var (
	ErrEmptyPrompt        = errors.New("prompt is empty")
	ErrOptionCount        = errors.New("wrong number of options")
	ErrDuplicateOption    = errors.New("duplicate option")
	ErrAnswerNotInOptions = errors.New("answer not among options")
)

// Validator checks a question before it is handed to a session or worksheet.
// Implementations are stateless and safe for concurrent use.
type Validator interface {
	Name() string
	Validate(q vocab.Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Word      string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: question for %q: %v", e.Validator, e.Word, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StructuralValidator checks that the word and prompt are present.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q vocab.Question) *ValidationError {
	if strings.TrimSpace(q.Word) == "" {
		return &ValidationError{Validator: v.Name(), Word: q.Word, Err: errors.New("word is empty")}
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Validator: v.Name(), Word: q.Word, Err: ErrEmptyPrompt}
	}
	return nil
}

// OptionsValidator enforces four unique options that include the answer.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q vocab.Question) *ValidationError {
	if len(q.Options) != vocab.OptionsPerQuestion {
		return &ValidationError{
			Validator: v.Name(),
			Word:      q.Word,
			Err:       fmt.Errorf("%w: got %d, want %d", ErrOptionCount, len(q.Options), vocab.OptionsPerQuestion),
		}
	}
	seen := make(map[string]bool, len(q.Options))
	found := false
	for _, opt := range q.Options {
		if seen[opt] {
			return &ValidationError{Validator: v.Name(), Word: q.Word, Err: fmt.Errorf("%w: %q", ErrDuplicateOption, opt)}
		}
		seen[opt] = true
		if opt == q.Word {
			found = true
		}
	}
	if !found {
		return &ValidationError{Validator: v.Name(), Word: q.Word, Err: ErrAnswerNotInOptions}
	}
	return nil
}

// DefaultValidators returns the validators applied by Normalize.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}, &OptionsValidator{}}
}

// Validate runs every validator and returns the first failure.
func Validate(q vocab.Question, validators ...Validator) error {
	if len(validators) == 0 {
		validators = DefaultValidators()
	}
	for _, v := range validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}
