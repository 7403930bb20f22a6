package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/relay/cmd/app/commands"
	"github.com/allisson/relay/internal/app"
	"github.com/allisson/relay/internal/config"
)

func getEventCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "requeue-failed",
			Usage: "Move the FAILED outbound events of a pipeline back to QUEUED",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "pipeline-id",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Pipeline ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				requeueUseCase, err := container.RequeueUseCase()
				if err != nil {
					return err
				}

				return commands.RunRequeueFailed(
					ctx,
					requeueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("pipeline-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "requeue-stranded",
			Usage: "Move inbound events stuck IN_PROGRESS back to QUEUED",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "older-than",
					Aliases: []string{"o"},
					Value:   15 * time.Minute,
					Usage:   "Requeue events claimed longer ago than this",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				requeueUseCase, err := container.RequeueUseCase()
				if err != nil {
					return err
				}

				return commands.RunRequeueStranded(
					ctx,
					requeueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Duration("older-than"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "event-stats",
			Usage: "Show inbound and outbound event counts per state",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "window",
					Aliases: []string{"w"},
					Value:   24 * time.Hour,
					Usage:   "Count events created within this window",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				statsUseCase, err := container.StatsUseCase()
				if err != nil {
					return err
				}

				return commands.RunEventStats(
					ctx,
					statsUseCase,
					commands.DefaultIO().Writer,
					cmd.Duration("window"),
					time.Now(),
					cmd.String("format"),
				)
			},
		},
	}
}
