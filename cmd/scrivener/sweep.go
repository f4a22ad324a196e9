package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scrivener/internal/engine"
	"github.com/samcharles93/scrivener/internal/harness"
)

func randSeedFlag(dest *int64) cli.Flag {
	return &cli.Int64Flag{
		Name:        "rand-seed",
		Usage:       "base sampling RNG seed (default -1 = random)",
		Value:       -1,
		Destination: dest,
	}
}

func buildRunner(c *cli.Command, randSeed int64) (*harness.Runner, error) {
	cfg := LoadConfig()
	applyCommonConfig(c, cfg)
	log := newLog()

	m, v, err := loadModel()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &harness.Runner{
		Model:    m,
		Vocab:    v,
		Engine:   engine.New(log),
		Log:      log,
		Out:      os.Stdout,
		RandSeed: randSeed,
	}, nil
}

func sweepCmd() *cli.Command {
	var (
		seedText string
		length   int64
		randSeed int64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "seed-text",
			Aliases:     []string{"p", "seed"},
			Usage:       "seed phrase shared by every temperature",
			Value:       "My dear Watson",
			Destination: &seedText,
		},
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"n"},
			Usage:       "characters to generate per temperature",
			Value:       100,
			Destination: &length,
		},
		randSeedFlag(&randSeed),
	)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Generate the same seed across the temperature ladder",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := buildRunner(c, randSeed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := r.TemperatureSweep(seedText, int(length)); err != nil {
				return cli.Exit(fmt.Sprintf("error: temperature sweep: %v", err), 1)
			}
			return nil
		},
	}
}

func seedsCmd() *cli.Command {
	var (
		length   int64
		temp     float64
		randSeed int64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"n"},
			Usage:       "characters to generate per seed",
			Value:       80,
			Destination: &length,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature",
			Value:       engine.DefaultTemperature,
			Destination: &temp,
		},
		randSeedFlag(&randSeed),
	)

	return &cli.Command{
		Name:  "seeds",
		Usage: "Generate across seed phrases grouped by length",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := buildRunner(c, randSeed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := r.SeedLengthSweep(int(length), temp); err != nil {
				return cli.Exit(fmt.Sprintf("error: seed sweep: %v", err), 1)
			}
			return nil
		},
	}
}

func phrasesCmd() *cli.Command {
	var (
		length   int64
		temp     float64
		randSeed int64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"n"},
			Usage:       "characters to generate per phrase",
			Value:       120,
			Destination: &length,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature",
			Value:       engine.DefaultTemperature,
			Destination: &temp,
		},
		randSeedFlag(&randSeed),
	)

	return &cli.Command{
		Name:  "phrases",
		Usage: "Generate from the canonical phrase suite",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := buildRunner(c, randSeed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := r.PhraseSuite(int(length), temp); err != nil {
				return cli.Exit(fmt.Sprintf("error: phrase suite: %v", err), 1)
			}
			return nil
		},
	}
}

func analyzeCmd() *cli.Command {
	var (
		samples  int64
		length   int64
		temp     float64
		randSeed int64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "samples",
			Usage:       "independent generations per phrase",
			Value:       5,
			Destination: &samples,
		},
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"n"},
			Usage:       "characters to generate per sample",
			Value:       100,
			Destination: &length,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature",
			Value:       engine.DefaultTemperature,
			Destination: &temp,
		},
		randSeedFlag(&randSeed),
	)

	return &cli.Command{
		Name:  "analyze",
		Usage: "Sample repeatedly per phrase and report length and stop-word stats",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := buildRunner(c, randSeed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if _, err := r.QualityAnalysis(int(samples), int(length), temp); err != nil {
				return cli.Exit(fmt.Sprintf("error: quality analysis: %v", err), 1)
			}
			return nil
		},
	}
}
