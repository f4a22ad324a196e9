package model

import (
	"fmt"
	"math"
	"math/rand"
)

// mat is a dense row-major float32 matrix.
type mat struct {
	rows, cols int
	data       []float32
}

func newMat(rows, cols int) mat {
	return mat{rows: rows, cols: cols, data: make([]float32, rows*cols)}
}

func (m mat) row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// fillRand fills the matrix with deterministic values in [-scale, scale]
// derived from the seed.
func fillRand(m *mat, seed int64, scale float32) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.data {
		m.data[i] = (rng.Float32()*2 - 1) * scale
	}
}

// Elman is a single-layer tanh recurrent network over a character
// vocabulary:
//
//	h' = tanh(Wxh[token] + h * Whh + Bh)
//	y  = h' * Who + By
//
// The input is a one-hot token, so the input projection reduces to a row
// lookup in Wxh. Step never mutates the receiver, so one Elman can back
// any number of generation runs.
type Elman struct {
	vocab  int
	hidden int

	Wxh mat // [vocab x hidden] input projection (doubles as embedding)
	Whh mat // [hidden x hidden] recurrent weights
	Who mat // [hidden x vocab] output projection
	Bh  []float32
	By  []float32
}

type elmanState struct {
	h []float32
}

// NewElman constructs a model with deterministically random weights
// derived from the seed. Weight scale follows 1/sqrt(hidden) so tanh
// activations stay out of saturation.
func NewElman(vocab, hidden int, seed int64) (*Elman, error) {
	if vocab <= 0 {
		return nil, fmt.Errorf("elman: vocab size must be positive, got %d", vocab)
	}
	if hidden <= 0 {
		return nil, fmt.Errorf("elman: hidden size must be positive, got %d", hidden)
	}

	m := &Elman{
		vocab:  vocab,
		hidden: hidden,
		Wxh:    newMat(vocab, hidden),
		Whh:    newMat(hidden, hidden),
		Who:    newMat(hidden, vocab),
		Bh:     make([]float32, hidden),
		By:     make([]float32, vocab),
	}
	scale := float32(1.0 / math.Sqrt(float64(hidden)))
	fillRand(&m.Wxh, seed+11, scale)
	fillRand(&m.Whh, seed+23, scale)
	fillRand(&m.Who, seed+37, scale)
	return m, nil
}

// VocabSize returns the width of the score vector.
func (m *Elman) VocabSize() int {
	return m.vocab
}

// HiddenSize returns the recurrent state width.
func (m *Elman) HiddenSize() int {
	return m.hidden
}

// Step advances the recurrent state by one token and returns the logits
// over the vocabulary. A nil state starts a fresh sequence.
func (m *Elman) Step(token int, state State) ([]float32, State, error) {
	if token < 0 || token >= m.vocab {
		return nil, nil, fmt.Errorf("elman: token %d out of range [0,%d)", token, m.vocab)
	}

	var prev []float32
	if state != nil {
		s, ok := state.(*elmanState)
		if !ok {
			return nil, nil, fmt.Errorf("elman: foreign state type %T", state)
		}
		prev = s.h
	}

	h := make([]float32, m.hidden)
	emb := m.Wxh.row(token)
	copy(h, emb)
	for j := range h {
		h[j] += m.Bh[j]
	}
	if prev != nil {
		for i, p := range prev {
			if p == 0 {
				continue
			}
			row := m.Whh.row(i)
			for j := range h {
				h[j] += p * row[j]
			}
		}
	}
	for j := range h {
		h[j] = float32(math.Tanh(float64(h[j])))
	}

	logits := make([]float32, m.vocab)
	copy(logits, m.By)
	for i, a := range h {
		row := m.Who.row(i)
		for j := range logits {
			logits[j] += a * row[j]
		}
	}

	return logits, &elmanState{h: h}, nil
}
