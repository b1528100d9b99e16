package session

import (
	"math/rand/v2"
	"time"
)

// Select records option as the answer to the current question. Only the
// first selection while awaiting an answer counts; later ones are ignored.
func (s *Session) Select(option string) Outcome {
	if s.phase != PhaseAwaitingAnswer {
		return OutcomeIgnored
	}
	q := s.questions[s.index]
	s.selected = option
	if q.IsCorrect(option) {
		s.correct++
		s.phase = PhaseAnsweredCorrect
		return OutcomeCorrect
	}
	s.incorrect = append(s.incorrect, q)
	s.phase = PhaseAnsweredIncorrect
	return OutcomeIncorrect
}

// AutoAdvance moves past a correctly answered question. index guards
// against a stale timer firing after the user has already moved on.
func (s *Session) AutoAdvance(index int) bool {
	if s.phase != PhaseAnsweredCorrect || s.index != index {
		return false
	}
	s.advance()
	return true
}

// Next moves past a wrongly answered question.
func (s *Session) Next() bool {
	if s.phase != PhaseAnsweredIncorrect {
		return false
	}
	s.advance()
	return true
}

func (s *Session) advance() {
	s.selected = ""
	s.index++
	if s.index >= len(s.questions) {
		s.phase = PhaseCompleted
		return
	}
	s.phase = PhaseAwaitingAnswer
}

// Exit abandons the session. It is a no-op once terminal.
func (s *Session) Exit() {
	if s.phase.Terminal() {
		return
	}
	s.phase = PhaseAbandoned
}

// Result summarizes a completed session. ok is false until completion.
func (s *Session) Result() (res Result, ok bool) {
	if s.phase != PhaseCompleted {
		return Result{}, false
	}
	return Result{
		SessionID: s.ID,
		Kind:      s.Kind,
		Round:     s.Round,
		Total:     len(s.questions),
		Correct:   s.correct,
		Incorrect: s.Incorrect(),
		Elapsed:   time.Since(s.StartTime),
	}, true
}

// RetryIncorrect starts the next round over this round's wrong answers,
// reshuffled.
func (s *Session) RetryIncorrect(rng *rand.Rand) (*Session, error) {
	next, err := New(rng, s.Kind, s.incorrect)
	if err != nil {
		return nil, err
	}
	next.Round = s.Round + 1
	return next, nil
}
