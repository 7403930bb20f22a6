package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/relay/cmd/app/commands"
	"github.com/allisson/relay/internal/app"
	"github.com/allisson/relay/internal/config"
)

func sourceIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Source ID (UUID)",
	}
}

func getSourceCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-source",
			Usage: "Register a new event source",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique source name",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the source accepts events immediately",
				},
				&cli.BoolFlag{
					Name:    "secured",
					Aliases: []string{"s"},
					Value:   true,
					Usage:   "Whether ingestion requires a source key",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				sourceUseCase, err := container.SourceUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSource(
					ctx,
					sourceUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.Bool("active"),
					cmd.Bool("secured"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "setup-source-keys",
			Usage: "Generate a fresh primary and secondary key for a source",
			Flags: []cli.Flag{sourceIDFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				sourceUseCase, err := container.SourceUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetupSourceKeys(
					ctx,
					sourceUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-source-keys",
			Usage: "Rotate a source's keys, keeping the current primary as secondary",
			Flags: []cli.Flag{sourceIDFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				sourceUseCase, err := container.SourceUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateSourceKeys(
					ctx,
					sourceUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "import-pipelines",
			Usage: "Create or update pipelines from a YAML or JSON definitions file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Path to the pipeline definitions file",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				pipelineUseCase, err := container.PipelineUseCase()
				if err != nil {
					return err
				}

				return commands.RunImportPipelines(
					ctx,
					pipelineUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
	}
}
