// Package session drives a single quiz attempt: one current question at a
// time, first answer binding, wrong answers collected for a retry round.
package session

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/google/uuid"
)

// AutoAdvanceDelay is how long a correct answer stays on screen before the
// session moves on by itself.
const AutoAdvanceDelay = 800 * time.Millisecond

// ErrNoQuestions is returned when a session would start with nothing to ask.
var ErrNoQuestions = errors.New("session has no questions")

// Phase is the state of the session machine.
type Phase int

const (
	PhaseAwaitingAnswer    Phase = iota // Waiting for a selection at Index
	PhaseAnsweredCorrect                // Correct; auto-advance pending
	PhaseAnsweredIncorrect              // Wrong; waiting for an explicit Next
	PhaseCompleted                      // All questions answered
	PhaseAbandoned                      // Exited before completion
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseAnsweredCorrect:
		return "answered-correct"
	case PhaseAnsweredIncorrect:
		return "answered-incorrect"
	case PhaseCompleted:
		return "completed"
	case PhaseAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseAbandoned
}

// Outcome is the result of a selection.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

// Session tracks the runtime state of one quiz attempt.
type Session struct {
	ID        string
	Kind      vocab.QuizKind
	Round     int
	StartTime time.Time

	questions []vocab.Question
	index     int
	phase     Phase
	selected  string
	correct   int
	incorrect []vocab.Question
}

// New starts a session over a shuffled copy of questions.
func New(rng *rand.Rand, kind vocab.QuizKind, questions []vocab.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		Round:     1,
		StartTime: time.Now(),
		questions: quiz.Shuffle(rng, questions),
		phase:     PhaseAwaitingAnswer,
	}, nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Index returns the position of the current question.
func (s *Session) Index() int { return s.index }

// Len returns the number of questions in this round.
func (s *Session) Len() int { return len(s.questions) }

// Selected returns the binding selection for the current question, if any.
func (s *Session) Selected() string { return s.selected }

// CorrectCount returns how many questions were answered right first time.
func (s *Session) CorrectCount() int { return s.correct }

// Current returns the question at Index. ok is false once terminal.
func (s *Session) Current() (q vocab.Question, ok bool) {
	if s.phase.Terminal() || s.index >= len(s.questions) {
		return vocab.Question{}, false
	}
	return s.questions[s.index], true
}

// Incorrect returns the questions answered wrong so far, in answer order.
func (s *Session) Incorrect() []vocab.Question {
	return append([]vocab.Question(nil), s.incorrect...)
}
