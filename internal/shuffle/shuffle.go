// Package shuffle reorders answers with a reproducible, per-question seed.
package shuffle

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	mathrand "math/rand/v2"
	"strconv"

	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// NewSeed draws a run seed from the system random source.
func NewSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// deriveSeed maps (run seed, ordinal) to the two PCG state words.
func deriveSeed(seed uint64, ordinal int) (uint64, uint64) {
	h := sha256.Sum256([]byte(strconv.FormatUint(seed, 10) + "|" + strconv.Itoa(ordinal)))
	return binary.LittleEndian.Uint64(h[:8]), binary.LittleEndian.Uint64(h[8:16])
}

// Question returns a copy of q with its answers permuted when the type
// allows it. The permutation depends only on seed and ordinal.
func Question(q question.Question, seed uint64, ordinal int) question.Question {
	if !q.Type.Shuffleable() || len(q.Answers) < 2 {
		return q
	}
	out := q.Clone()
	hi, lo := deriveSeed(seed, ordinal)
	rng := mathrand.New(mathrand.NewPCG(hi, lo))
	rng.Shuffle(len(out.Answers), func(i, j int) {
		out.Answers[i], out.Answers[j] = out.Answers[j], out.Answers[i]
	})
	return out
}

// Apply returns a new set with every applicable question shuffled. The
// input set is left untouched.
func Apply(set question.Set, seed uint64) question.Set {
	out := question.Set{Source: set.Source, Questions: make([]question.Question, len(set.Questions))}
	for i, q := range set.Questions {
		out.Questions[i] = Question(q, seed, i)
	}
	return out
}
