// Package quiz shapes raw AI questions into playable ones.
package quiz

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/cihui/internal/vocab"
)

// NewRand returns a PCG-backed source. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle returns a uniformly permuted copy of items (Fisher-Yates).
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	out := append([]T(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleQuestions returns the questions in a new order, each with its
// own option order shuffled as well.
func ShuffleQuestions(rng *rand.Rand, qs []vocab.Question) []vocab.Question {
	out := Shuffle(rng, qs)
	for i := range out {
		out[i] = out[i].Clone()
		out[i].Options = Shuffle(rng, out[i].Options)
	}
	return out
}

// Normalize tags each raw question with kind, trims its fields, shuffles
// its options and drops questions that fail validation. Rejected
// questions are reported through the joined error; the kept slice is
// always usable.
func Normalize(rng *rand.Rand, kind vocab.QuizKind, raw []vocab.Question, validators ...Validator) ([]vocab.Question, error) {
	kept := make([]vocab.Question, 0, len(raw))
	var errs []error
	for _, q := range raw {
		q = q.Clone()
		q.Kind = kind
		q.Word = strings.TrimSpace(q.Word)
		q.Prompt = strings.TrimSpace(q.Prompt)
		for i, opt := range q.Options {
			q.Options[i] = strings.TrimSpace(opt)
		}
		if err := Validate(q, validators...); err != nil {
			errs = append(errs, err)
			continue
		}
		q.Options = Shuffle(rng, q.Options)
		kept = append(kept, q)
	}
	return kept, errors.Join(errs...)
}
