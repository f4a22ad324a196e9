package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scrivener/internal/engine"
	"github.com/samcharles93/scrivener/internal/logger"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

// exitCommand terminates the interactive session.
const exitCommand = "quit"

func chatCmd() *cli.Command {
	var randSeed int64

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "rand-seed",
			Usage:       "sampling RNG seed (default -1 = random)",
			Value:       -1,
			Destination: &randSeed,
		},
	)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"interactive"},
		Usage:   "Interactive seeded generation session",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(c, cfg)
			log := newLog()

			m, v, err := loadModel()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
			}

			s := &session{
				log:      log,
				model:    m,
				vocab:    v,
				engine:   engine.New(log),
				out:      os.Stdout,
				readLine: readInteractiveLine,
				randSeed: randSeed,
			}
			return s.run()
		},
	}
}

// session is the interactive read-generate loop. Reads are blocking; the
// exit sentinel is the only cancellation point, checked once per cycle.
type session struct {
	log      logger.Logger
	model    model.SequenceModel
	vocab    *vocab.Vocabulary
	engine   *engine.Engine
	out      io.Writer
	readLine func(prompt string) (string, error)
	randSeed int64
}

func (s *session) run() error {
	fmt.Fprintln(s.out, "Interactive Text Generation:")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintf(s.out, "Enter your own seed phrases (type %q to exit):\n", exitCommand)

	for {
		seed, err := s.readLine("\nEnter seed phrase: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read seed: %w", err)
		}
		seed = strings.TrimSpace(seed)
		if strings.EqualFold(seed, exitCommand) {
			return nil
		}
		if seed == "" {
			continue
		}

		length := s.promptLength()
		temperature := s.promptTemperature()

		fmt.Fprintf(s.out, "Seed: %q\n", seed)
		fmt.Fprintln(s.out, "Generated text:")
		fmt.Fprint(s.out, seed)

		_, err = s.engine.Generate(s.model, s.vocab, engine.Request{
			Seed:        seed,
			Length:      length,
			Temperature: temperature,
			RandSeed:    s.randSeed,
		}, func(r rune) { fmt.Fprintf(s.out, "%c", r) })
		fmt.Fprintln(s.out)
		if err != nil {
			if errors.Is(err, engine.ErrEmptySeed) {
				s.log.Error("generation failed", "err", err)
				continue
			}
			return err
		}
		fmt.Fprintln(s.out, strings.Repeat("=", separator))
	}
}

func (s *session) promptLength() int {
	line, err := s.readLine(fmt.Sprintf("Enter length (default %d): ", engine.DefaultLength))
	if err != nil {
		return engine.DefaultLength
	}
	length, ok := parseIntOr(line, engine.DefaultLength)
	if !ok {
		fmt.Fprintf(s.out, "Invalid length %q, using default %d.\n", strings.TrimSpace(line), engine.DefaultLength)
	}
	return length
}

func (s *session) promptTemperature() float64 {
	line, err := s.readLine(fmt.Sprintf("Enter temperature (default %g): ", engine.DefaultTemperature))
	if err != nil {
		return engine.DefaultTemperature
	}
	temp, ok := parseFloatOr(line, engine.DefaultTemperature)
	if !ok {
		fmt.Fprintf(s.out, "Invalid temperature %q, using default %g.\n", strings.TrimSpace(line), engine.DefaultTemperature)
	}
	return temp
}

// parseIntOr returns fallback when s is blank (silently) or not a
// non-negative integer (second return false so the caller can notify).
func parseIntOr(s string, fallback int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback, false
	}
	return n, true
}

// parseFloatOr is parseIntOr for temperatures. Values <= 0 also fall
// back: the division singularity at zero is not worth a session abort.
func parseFloatOr(s string, fallback float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fallback, false
	}
	return f, true
}
