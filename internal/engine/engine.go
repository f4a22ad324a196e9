// Package engine implements seeded, temperature-controlled sampling from
// a character-level sequence model. A generation run replays the seed
// phrase through the model to warm up its recurrent state, then draws one
// character at a time from the temperature-scaled softmax of the model's
// scores.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/samcharles93/scrivener/internal/logger"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

// ErrEmptySeed is returned when no character of the seed phrase maps to a
// vocabulary id, leaving the model nothing to condition on.
var ErrEmptySeed = errors.New("no seed character found in vocabulary")

// Default generation parameters, used by the interactive session when
// input is missing or malformed.
const (
	DefaultLength      = 150
	DefaultTemperature = 0.8
)

// Request describes one generation run.
type Request struct {
	// Seed is the phrase the run is conditioned on. It is reproduced
	// verbatim at the start of the result, including any characters the
	// vocabulary does not know.
	Seed string

	// Length is the number of characters to generate after the seed.
	Length int

	// Temperature divides the raw scores before softmax. Higher values
	// flatten the distribution, lower values sharpen it. Zero selects
	// greedy argmax decoding.
	Temperature float64

	// RandSeed seeds the sampling RNG. Negative means time-based.
	RandSeed int64
}

// Validate rejects parameter combinations the decoding loop cannot run
// with. Temperature zero is permitted and decodes greedily.
func (r Request) Validate() error {
	if r.Length < 0 {
		return fmt.Errorf("length must be non-negative, got %d", r.Length)
	}
	if r.Temperature < 0 {
		return fmt.Errorf("temperature must be non-negative, got %g", r.Temperature)
	}
	return nil
}

// Result is the outcome of one generation run.
type Result struct {
	// Text is the original seed followed by the generated continuation.
	Text string
	// Continuation is the generated text without the seed prefix.
	Continuation string
	// DroppedRunes counts seed characters skipped during tokenization.
	DroppedRunes int
	Stats        Stats
}

// Stats reports throughput for one run.
type Stats struct {
	Generated   int
	Duration    time.Duration
	RunesPerSec float64
}

// StreamFunc receives each character as it is sampled.
type StreamFunc func(r rune)

// Engine drives generation runs. It holds no per-run state; a single
// Engine can serve any number of sequential calls.
type Engine struct {
	log logger.Logger
}

// New returns an engine that reports warnings through log.
func New(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{log: log}
}

// Generate runs one sampling pass. The seed is tokenized against the
// vocabulary (unknown characters skipped with a warning), the model state
// is warmed up over every seed token but the last, and then Length
// characters are sampled, each fed back as the next input. stream may be
// nil. A model failure aborts the run with no partial result.
func (e *Engine) Generate(m model.SequenceModel, v *vocab.Vocabulary, req Request, stream StreamFunc) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids, dropped := v.Encode(req.Seed)
	for _, r := range dropped {
		e.log.Warn("seed character not in vocabulary, skipping", "char", string(r))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("seed %q: %w", req.Seed, ErrEmptySeed)
	}

	// Warm-up: replay the seed to advance the recurrent state. The last
	// seed token is held back; its prediction produces the first sampled
	// character.
	var state model.State
	var err error
	for _, id := range ids[:len(ids)-1] {
		_, state, err = m.Step(id, state)
		if err != nil {
			return nil, fmt.Errorf("warm-up step: %w", err)
		}
	}

	randSeed := req.RandSeed
	if randSeed < 0 {
		randSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(randSeed))

	var (
		sb     strings.Builder
		scores []float32
		cur    = ids[len(ids)-1]
		start  = time.Now()
	)
	for i := 0; i < req.Length; i++ {
		scores, state, err = m.Step(cur, state)
		if err != nil {
			return nil, fmt.Errorf("decoding step %d: %w", i, err)
		}

		next := sampleToken(rng, scores, req.Temperature)
		r, ok := v.IDToChar(next)
		if !ok {
			return nil, fmt.Errorf("decoding step %d: sampled id %d outside vocabulary", i, next)
		}

		sb.WriteRune(r)
		if stream != nil {
			stream(r)
		}
		cur = next
	}

	stats := Stats{
		Generated: req.Length,
		Duration:  time.Since(start),
	}
	if secs := stats.Duration.Seconds(); secs > 0 {
		stats.RunesPerSec = float64(stats.Generated) / secs
	}

	return &Result{
		Text:         req.Seed + sb.String(),
		Continuation: sb.String(),
		DroppedRunes: len(dropped),
		Stats:        stats,
	}, nil
}

// sampleToken draws one id from the categorical distribution defined by
// the temperature-scaled softmax of scores. Temperature zero short
// circuits to argmax. The softmax subtracts the max scaled score for
// numerical stability.
func sampleToken(rng *rand.Rand, scores []float32, temperature float64) int {
	if temperature == 0 {
		return argmax(scores)
	}

	invTemp := 1.0 / temperature
	scaled := make([]float64, len(scores))
	maxv := math.Inf(-1)
	for i, s := range scores {
		scaled[i] = float64(s) * invTemp
		if scaled[i] > maxv {
			maxv = scaled[i]
		}
	}

	var sum float64
	for i := range scaled {
		scaled[i] = math.Exp(scaled[i] - maxv)
		sum += scaled[i]
	}
	if sum == 0 {
		return argmax(scores)
	}

	r := rng.Float64() * sum
	var c float64
	for i, p := range scaled {
		c += p
		if r <= c {
			return i
		}
	}
	return len(scaled) - 1
}

// argmax returns the index of the maximum value in the slice. If the
// slice is empty it panics.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
