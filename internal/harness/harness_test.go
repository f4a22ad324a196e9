package harness

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/samcharles93/scrivener/internal/engine"
	"github.com/samcharles93/scrivener/internal/logger"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

// runSeparator is the exact per-run separator line; anchoring with
// newlines keeps the wider heading rule from matching.
var runSeparator = "\n" + strings.Repeat("=", 50) + "\n"

const testCorpus = "My dear fellow Watson, Elementary! The game is afoot. " +
	"I have observed it is quite simple; the case presents. " +
	"Holmes said: Watson, I have the evidence. I deduce that you and of to a in"

func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	v := vocab.FromCorpus(testCorpus)
	m, err := model.NewElman(v.Size(), 12, 7)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	var out bytes.Buffer
	log := logger.Text(&bytes.Buffer{}, slog.LevelError)
	return &Runner{
		Model:    m,
		Vocab:    v,
		Engine:   engine.New(log),
		Log:      log,
		Out:      &out,
		RandSeed: 1,
	}, &out
}

func TestTemperatureSweep(t *testing.T) {
	t.Parallel()
	r, out := testRunner(t)

	if err := r.TemperatureSweep("My dear Watson", 20); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Temperature: 0.3", "Temperature: 2", `Seed: "My dear Watson"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in output:\n%s", want, text)
		}
	}
	if got := strings.Count(text, runSeparator); got != len(Temperatures) {
		t.Fatalf("expected %d separators, got %d", len(Temperatures), got)
	}
}

func TestSeedLengthSweep(t *testing.T) {
	t.Parallel()
	r, out := testRunner(t)

	if err := r.SeedLengthSweep(15, 0.8); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	text := out.String()
	for _, bucket := range SeedBuckets {
		if !strings.Contains(text, bucket.Label) {
			t.Fatalf("missing bucket %q", bucket.Label)
		}
	}
	var seeds int
	for _, b := range SeedBuckets {
		seeds += len(b.Seeds)
	}
	if got := strings.Count(text, runSeparator); got != seeds {
		t.Fatalf("expected %d runs, got %d", seeds, got)
	}
}

func TestPhraseSuite(t *testing.T) {
	t.Parallel()
	r, out := testRunner(t)

	if err := r.PhraseSuite(10, 0.8); err != nil {
		t.Fatalf("suite: %v", err)
	}
	if got := strings.Count(out.String(), runSeparator); got != len(CanonicalPhrases) {
		t.Fatalf("expected %d runs, got %d", len(CanonicalPhrases), got)
	}
}

func TestQualityAnalysis(t *testing.T) {
	t.Parallel()
	r, out := testRunner(t)

	reports, err := r.QualityAnalysis(3, 20, 0.8)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if len(reports) != len(AnalysisPhrases) {
		t.Fatalf("expected %d reports, got %d", len(AnalysisPhrases), len(reports))
	}

	for _, rep := range reports {
		if rep.Samples != 3 {
			t.Fatalf("phrase %q: expected 3 samples, got %d", rep.Phrase, rep.Samples)
		}
		// Every sample is seed + 20 generated runes.
		want := float64(len([]rune(rep.Phrase)) + 20)
		if rep.MeanLength != want {
			t.Fatalf("phrase %q: mean length %.1f, want %.1f", rep.Phrase, rep.MeanLength, want)
		}
		if len(rep.WordCounts) != len(StopWords) {
			t.Fatalf("phrase %q: expected %d word counts", rep.Phrase, len(rep.WordCounts))
		}
		for i := 1; i < len(rep.WordCounts); i++ {
			if rep.WordCounts[i].Count > rep.WordCounts[i-1].Count {
				t.Fatalf("phrase %q: word counts not sorted descending", rep.Phrase)
			}
		}
	}

	if !strings.Contains(out.String(), "Average length:") {
		t.Fatal("missing average length line")
	}
}

func TestQualityAnalysisRejectsZeroSamples(t *testing.T) {
	t.Parallel()
	r, _ := testRunner(t)

	if _, err := r.QualityAnalysis(0, 10, 0.8); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestSweepSkipsEmptySeed(t *testing.T) {
	t.Parallel()

	// Vocabulary that knows none of the canonical phrase characters.
	v := vocab.FromCorpus("0123456789")
	m, err := model.NewElman(v.Size(), 8, 1)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	var out bytes.Buffer
	log := logger.Text(&bytes.Buffer{}, slog.LevelError)
	r := &Runner{Model: m, Vocab: v, Engine: engine.New(log), Log: log, Out: &out, RandSeed: 1}

	// Every phrase fails to encode; the suite must still complete.
	if err := r.PhraseSuite(5, 0.8); err != nil {
		t.Fatalf("suite should skip empty-seed failures, got: %v", err)
	}
}

func TestCountStopWordsOrdering(t *testing.T) {
	t.Parallel()

	counts := countStopWords([]string{"the the the and and of"})
	if counts[0].Word != "the" || counts[0].Count != 3 {
		t.Fatalf("expected \"the\"=3 first, got %q=%d", counts[0].Word, counts[0].Count)
	}
	if counts[1].Word != "and" {
		t.Fatalf("expected \"and\" second, got %q", counts[1].Word)
	}
}
