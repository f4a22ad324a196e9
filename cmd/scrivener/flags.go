package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scrivener/internal/logger"
	"github.com/samcharles93/scrivener/internal/model"
	"github.com/samcharles93/scrivener/internal/vocab"
)

var (
	checkpointPath string
	corpusPath     string
	hiddenSize     int64
	initSeed       int64
	logLevel       string
	logFormat      string
	debug          bool
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "checkpoint",
			Aliases:     []string{"m"},
			Usage:       "path to a trained model checkpoint (JSON)",
			Destination: &checkpointPath,
		},
		&cli.StringFlag{
			Name:        "corpus",
			Usage:       "path to a training corpus; builds an untrained model for smoke runs",
			Destination: &corpusPath,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "hidden state size for --corpus models",
			Value:       128,
			Destination: &hiddenSize,
		},
		&cli.Int64Flag{
			Name:        "init-seed",
			Usage:       "weight initialisation seed for --corpus models",
			Value:       0,
			Destination: &initSeed,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func newLog() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	return logger.ForFormat(logFormat, os.Stderr, level)
}

// loadModel resolves the model and vocabulary from the common flags:
// a checkpoint when given, otherwise an untrained model over the corpus
// vocabulary.
func loadModel() (model.SequenceModel, *vocab.Vocabulary, error) {
	switch {
	case checkpointPath != "":
		return model.LoadCheckpoint(checkpointPath)
	case corpusPath != "":
		data, err := os.ReadFile(corpusPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read corpus: %w", err)
		}
		v := vocab.FromCorpus(string(data))
		if v.Size() == 0 {
			return nil, nil, fmt.Errorf("corpus %s contains no characters", corpusPath)
		}
		m, err := model.NewElman(v.Size(), int(hiddenSize), initSeed)
		if err != nil {
			return nil, nil, err
		}
		return m, v, nil
	default:
		return nil, nil, errors.New("either --checkpoint or --corpus is required")
	}
}
