package model

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/scrivener/internal/vocab"
)

// checkpointFile is the on-disk JSON layout of a trained model. Weight
// matrices are stored flat in row-major order; vocab holds the characters
// in id order.
type checkpointFile struct {
	Vocab  string    `json:"vocab"`
	Hidden int       `json:"hidden"`
	Wxh    []float32 `json:"wxh"`
	Whh    []float32 `json:"whh"`
	Who    []float32 `json:"who"`
	Bh     []float32 `json:"bh"`
	By     []float32 `json:"by"`
}

// LoadCheckpoint reads a model checkpoint and reconstructs the network
// and the vocabulary it was trained against.
func LoadCheckpoint(path string) (*Elman, *vocab.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cf checkpointFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}

	v, err := vocab.New([]rune(cf.Vocab))
	if err != nil {
		return nil, nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}

	vocabSize := v.Size()
	if vocabSize == 0 {
		return nil, nil, fmt.Errorf("checkpoint %s: empty vocabulary", path)
	}
	if cf.Hidden <= 0 {
		return nil, nil, fmt.Errorf("checkpoint %s: hidden size %d", path, cf.Hidden)
	}

	dims := []struct {
		name string
		got  int
		want int
	}{
		{"wxh", len(cf.Wxh), vocabSize * cf.Hidden},
		{"whh", len(cf.Whh), cf.Hidden * cf.Hidden},
		{"who", len(cf.Who), cf.Hidden * vocabSize},
		{"bh", len(cf.Bh), cf.Hidden},
		{"by", len(cf.By), vocabSize},
	}
	for _, d := range dims {
		if d.got != d.want {
			return nil, nil, fmt.Errorf("checkpoint %s: %s has %d values, want %d", path, d.name, d.got, d.want)
		}
	}

	m := &Elman{
		vocab:  vocabSize,
		hidden: cf.Hidden,
		Wxh:    mat{rows: vocabSize, cols: cf.Hidden, data: cf.Wxh},
		Whh:    mat{rows: cf.Hidden, cols: cf.Hidden, data: cf.Whh},
		Who:    mat{rows: cf.Hidden, cols: vocabSize, data: cf.Who},
		Bh:     cf.Bh,
		By:     cf.By,
	}
	return m, v, nil
}

// SaveCheckpoint writes the model and its vocabulary to path.
func SaveCheckpoint(path string, m *Elman, v *vocab.Vocabulary) error {
	if m.vocab != v.Size() {
		return fmt.Errorf("save checkpoint: model vocab %d != vocabulary size %d", m.vocab, v.Size())
	}
	cf := checkpointFile{
		Vocab:  v.String(),
		Hidden: m.hidden,
		Wxh:    m.Wxh.data,
		Whh:    m.Whh.data,
		Who:    m.Who.data,
		Bh:     m.Bh,
		By:     m.By,
	}
	data, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
