package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scrivener/internal/engine"
)

const separator = 50

func runCmd() *cli.Command {
	var (
		seedText   string
		length     int64
		temp       float64
		randSeed   int64
		streamMode string
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "seed-text",
			Aliases:     []string{"p", "seed"},
			Usage:       "seed phrase to condition the generation on",
			Destination: &seedText,
		},
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"n"},
			Usage:       "number of characters to generate",
			Value:       engine.DefaultLength,
			Destination: &length,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature (0 = greedy)",
			Value:       engine.DefaultTemperature,
			Destination: &temp,
		},
		&cli.Int64Flag{
			Name:        "rand-seed",
			Usage:       "sampling RNG seed (default -1 = random)",
			Value:       -1,
			Destination: &randSeed,
		},
		&cli.StringFlag{
			Name:        "stream-mode",
			Usage:       "output mode (instant, typewriter, quiet)",
			Value:       "instant",
			Destination: &streamMode,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Generate text from a seed phrase",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyRunConfig(c, cfg, &temp, &length, &randSeed, &streamMode)
			log := newLog()

			if seedText == "" {
				return cli.Exit("error: --seed-text is required", 1)
			}
			mode, err := ParseStreamMode(streamMode)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			m, v, err := loadModel()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
			}
			log.Debug("model ready", "vocab_size", v.Size())

			eng := engine.New(log)
			w := NewStreamWriter(mode, os.Stdout)

			fmt.Printf("Seed: %q\n", seedText)
			fmt.Println("Generated text:")
			w.WriteString(seedText)

			res, err := eng.Generate(m, v, engine.Request{
				Seed:        seedText,
				Length:      int(length),
				Temperature: temp,
				RandSeed:    randSeed,
			}, w.WriteRune)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: generate: %v", err), 1)
			}
			w.Flush()
			fmt.Println()
			fmt.Println(strings.Repeat("=", separator))

			log.Info("generation complete",
				"generated", res.Stats.Generated,
				"duration", res.Stats.Duration.Round(time.Millisecond).String(),
				"runes_per_sec", fmt.Sprintf("%.1f", res.Stats.RunesPerSec))
			return nil
		},
	}
}
