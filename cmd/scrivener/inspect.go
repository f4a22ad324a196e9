package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scrivener/internal/model"
)

func inspectCmd() *cli.Command {
	var path string

	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:        "checkpoint",
			Aliases:     []string{"m"},
			Usage:       "path to a trained model checkpoint (JSON)",
			Destination: &path,
		},
	}, loggingFlags()...)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print a checkpoint summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if path == "" {
				return cli.Exit("error: --checkpoint is required", 1)
			}
			m, v, err := model.LoadCheckpoint(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			vs, hs := v.Size(), m.HiddenSize()
			params := vs*hs + hs*hs + hs*vs + hs + vs

			fmt.Printf("Checkpoint:  %s\n", path)
			fmt.Printf("Vocab size:  %d\n", vs)
			fmt.Printf("Hidden size: %d\n", hs)
			fmt.Printf("Parameters:  %d\n", params)
			fmt.Printf("Characters:  %s\n", strconv.Quote(v.String()))
			return nil
		},
	}
}
