package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/badgereader/cmd/app/commands"
	"github.com/allisson/badgereader/internal/app"
	"github.com/allisson/badgereader/internal/config"
)

// loadContainer loads and validates configuration and builds a container.
func loadContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

func getScanCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "submit",
			Usage: "Submit one tag to the scan endpoint and show the outcome",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tag",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tag identifier in hex (e.g., 04A1B2C3 or 04:a1:b2:c3)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				loop, err := container.ReaderLoop()
				if err != nil {
					return err
				}

				return commands.RunSubmit(
					ctx,
					loop,
					container.FeedbackController(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tag"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "token",
			Usage: "Exchange the configured credentials for a token and print its expiry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				acquirer, err := container.TokenAcquirer()
				if err != nil {
					return err
				}

				return commands.RunToken(
					ctx,
					acquirer,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "encrypt-password",
			Usage: "Encrypt the API password with a KMS key for API_PASSWORD_CIPHERTEXT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Plain text API password",
				},
				&cli.StringFlag{
					Name:    "key-uri",
					Aliases: []string{"k"},
					Usage:   "KMS key URI (defaults to KMS_KEY_URI)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cmd.String("key-uri")
				if keyURI == "" {
					keyURI = cfg.KMSKeyURI
				}

				return commands.RunEncryptPassword(
					ctx,
					container.CredentialService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("password"),
					keyURI,
				)
			},
		},
	}
}
