package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/badgereader/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "Run the reader loop and the status server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunReader(ctx, version)
			},
		},
	}
}
