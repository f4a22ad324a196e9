// Package harness contains the batch experiment drivers: parameter
// sweeps and a quality analysis that exercise the sampling engine across
// temperatures, seed lengths and a canonical phrase suite.
package harness

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/samcharles93/scrivener/internal/engine"
	"github.com/samcharles93/scrivener/internal/logger"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

// Temperatures exercised by TemperatureSweep, in sweep order.
var Temperatures = []float64{0.3, 0.5, 0.8, 1.0, 1.5, 2.0}

// SeedBucket groups seed phrases of similar length.
type SeedBucket struct {
	Label string
	Seeds []string
}

// SeedBuckets are the seed-length experiment groups.
var SeedBuckets = []SeedBucket{
	{"Short (1-3 chars)", []string{"I", "He", "The"}},
	{"Medium (4-8 chars)", []string{"Holmes", "Watson", "Elementary"}},
	{"Long (9+ chars)", []string{"My dear fellow", "The game is afoot", "I have observed"}},
}

// CanonicalPhrases is the fixed suite of domain phrases.
var CanonicalPhrases = []string{
	"My dear fellow",
	"Elementary, my dear Watson",
	"The game is afoot",
	"I have observed",
	"It is quite simple",
	"The case presents",
	"Holmes said",
	"Watson, I have",
	"The evidence suggests",
	"I deduce that",
}

// AnalysisPhrases are the seeds used by QualityAnalysis.
var AnalysisPhrases = []string{
	"My dear Watson",
	"The case was",
	"Holmes observed",
	"I have deduced",
	"Elementary",
}

// StopWords is the fixed word list counted by QualityAnalysis.
var StopWords = []string{"the", "and", "of", "to", "a", "in", "is", "it", "you", "that"}

const separatorWidth = 50

// Runner executes experiment sweeps against one model/vocabulary pair.
// Runs are strictly sequential; each generation gets fresh state.
type Runner struct {
	Model  model.SequenceModel
	Vocab  *vocab.Vocabulary
	Engine *engine.Engine
	Log    logger.Logger
	Out    io.Writer

	// RandSeed is the base RNG seed. When non-negative, run i of a sweep
	// uses RandSeed+i so sweeps are reproducible but runs still differ.
	// Negative means time-based seeding.
	RandSeed int64
}

func (r *Runner) seedFor(run int) int64 {
	if r.RandSeed < 0 {
		return -1
	}
	return r.RandSeed + int64(run)
}

// runOne prints the seed, streams one generation and closes with the
// separator line. Empty-seed failures are reported and swallowed so a
// sweep continues with its next item; anything else aborts the sweep.
func (r *Runner) runOne(req engine.Request) (*engine.Result, error) {
	fmt.Fprintf(r.Out, "Seed: %q\n", req.Seed)
	fmt.Fprintln(r.Out, "Generated text:")
	fmt.Fprint(r.Out, req.Seed)

	res, err := r.Engine.Generate(r.Model, r.Vocab, req, func(c rune) {
		fmt.Fprintf(r.Out, "%c", c)
	})
	fmt.Fprintln(r.Out)
	if err != nil {
		if errors.Is(err, engine.ErrEmptySeed) {
			r.Log.Error("generation skipped", "seed", req.Seed, "err", err)
			fmt.Fprintln(r.Out, strings.Repeat("=", separatorWidth))
			return nil, nil
		}
		return nil, err
	}
	fmt.Fprintln(r.Out, strings.Repeat("=", separatorWidth))
	return res, nil
}

func (r *Runner) heading(text string) {
	c := color.New(color.FgCyan, color.Bold)
	c.Fprintln(r.Out, text)
	fmt.Fprintln(r.Out, strings.Repeat("=", 60))
}

func (r *Runner) subheading(text string) {
	fmt.Fprintf(r.Out, "\n%s\n%s\n", text, strings.Repeat("-", 30))
}

// TemperatureSweep generates once per temperature with a fixed seed
// phrase and length.
func (r *Runner) TemperatureSweep(seed string, length int) error {
	r.heading("Testing Temperature Effects:")

	for i, temp := range Temperatures {
		r.subheading(fmt.Sprintf("Temperature: %g", temp))
		req := engine.Request{Seed: seed, Length: length, Temperature: temp, RandSeed: r.seedFor(i)}
		if _, err := r.runOne(req); err != nil {
			return fmt.Errorf("temperature %g: %w", temp, err)
		}
	}
	return nil
}

// SeedLengthSweep generates once per seed phrase, grouped by length
// bucket, with fixed length and temperature.
func (r *Runner) SeedLengthSweep(length int, temperature float64) error {
	r.heading("Testing Seed Phrase Lengths:")

	run := 0
	for _, bucket := range SeedBuckets {
		r.subheading(bucket.Label + ":")
		for _, seed := range bucket.Seeds {
			req := engine.Request{Seed: seed, Length: length, Temperature: temperature, RandSeed: r.seedFor(run)}
			if _, err := r.runOne(req); err != nil {
				return fmt.Errorf("seed %q: %w", seed, err)
			}
			run++
		}
	}
	return nil
}

// PhraseSuite generates once per canonical phrase.
func (r *Runner) PhraseSuite(length int, temperature float64) error {
	r.heading("Testing Canonical Phrases:")

	for i, phrase := range CanonicalPhrases {
		req := engine.Request{Seed: phrase, Length: length, Temperature: temperature, RandSeed: r.seedFor(i)}
		if _, err := r.runOne(req); err != nil {
			return fmt.Errorf("phrase %q: %w", phrase, err)
		}
	}
	return nil
}

// WordCount is one stop-word tally.
type WordCount struct {
	Word  string
	Count int
}

// PhraseReport aggregates the samples drawn for one analysis phrase.
type PhraseReport struct {
	Phrase     string
	Samples    int
	MeanLength float64
	WordCounts []WordCount // sorted descending by count
}

// QualityAnalysis draws numSamples generations per analysis phrase and
// aggregates mean output length and stop-word frequencies across all
// samples of that phrase.
func (r *Runner) QualityAnalysis(numSamples, length int, temperature float64) ([]PhraseReport, error) {
	if numSamples <= 0 {
		return nil, fmt.Errorf("quality analysis needs at least one sample, got %d", numSamples)
	}

	r.heading("Analyzing Generation Quality:")

	reports := make([]PhraseReport, 0, len(AnalysisPhrases))
	run := 0
	for _, phrase := range AnalysisPhrases {
		r.subheading(fmt.Sprintf("Analyzing: %q", phrase))

		texts := make([]string, 0, numSamples)
		for i := 0; i < numSamples; i++ {
			fmt.Fprintf(r.Out, "\nSample %d:\n", i+1)
			req := engine.Request{Seed: phrase, Length: length, Temperature: temperature, RandSeed: r.seedFor(run)}
			run++
			res, err := r.runOne(req)
			if err != nil {
				return nil, fmt.Errorf("phrase %q sample %d: %w", phrase, i+1, err)
			}
			if res == nil {
				continue
			}
			texts = append(texts, res.Text)
		}
		if len(texts) == 0 {
			continue
		}

		report := PhraseReport{
			Phrase:     phrase,
			Samples:    len(texts),
			MeanLength: meanRuneLength(texts),
			WordCounts: countStopWords(texts),
		}
		reports = append(reports, report)

		fmt.Fprintf(r.Out, "\nAverage length: %.1f characters\n", report.MeanLength)
		fmt.Fprintln(r.Out, "Common word frequency:")
		for _, wc := range report.WordCounts {
			fmt.Fprintf(r.Out, "  %q: %d\n", wc.Word, wc.Count)
		}
	}
	return reports, nil
}

func meanRuneLength(texts []string) float64 {
	var total int
	for _, s := range texts {
		total += utf8.RuneCountInString(s)
	}
	return float64(total) / float64(len(texts))
}

// countStopWords tallies substring occurrences of each stop word across
// the lowercased samples, sorted descending by count. Ties keep the
// stop-word list order.
func countStopWords(texts []string) []WordCount {
	counts := make([]WordCount, len(StopWords))
	for i, w := range StopWords {
		counts[i].Word = w
		for _, s := range texts {
			counts[i].Count += strings.Count(strings.ToLower(s), w)
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
