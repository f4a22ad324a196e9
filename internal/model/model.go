// Package model defines the sequence model interface the sampling engine
// drives, plus a concrete single-layer recurrent implementation and its
// checkpoint format.
package model

// State is the opaque recurrent state threaded through successive Step
// calls. A nil State means a fresh sequence start. Implementations return
// a new State from every Step; callers never mutate or alias one.
type State any

// SequenceModel consumes one token id at a time and produces a score
// vector over the vocabulary together with the updated recurrent state.
type SequenceModel interface {
	// Step advances the model by one token. state may be nil to start a
	// fresh sequence. The returned scores slice has VocabSize elements.
	Step(token int, state State) (scores []float32, next State, err error)

	// VocabSize returns the width of the score vector.
	VocabSize() int
}
