package departureboard

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/urfave/cli/v2"
)

var errUnhealthyBoard = errors.New("board has upstream errors")

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Print the current departure board once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "direction-group",
				Usage: "Direction group to show, defaults to the configured group",
			},
		},
		Action: func(c *cli.Context) error {
			service, err := serviceFromCLI(c)
			if err != nil {
				return err
			}

			board, err := service.Board(c.Context, c.String("direction-group"))
			if err != nil {
				return err
			}

			pretty.Println(board)

			return nil
		},
	}
}

func RegisterWatchCLI() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll the departure board and log it, backing off while the upstream is failing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "direction-group",
				Usage: "Direction group to watch, defaults to the configured group",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Time between polls",
				Value: 30 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			service, err := serviceFromCLI(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, service, c.String("direction-group"), c.Duration("interval"))
		},
	}
}

func serviceFromCLI(c *cli.Context) (*Service, error) {
	busboardConfig, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	return NewFromConfig(busboardConfig)
}

func watch(ctx context.Context, service *Service, groupID string, interval time.Duration) error {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Second,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         10 * time.Minute,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}

	for {
		b.Reset()

		err := backoff.RetryNotify(
			func() error {
				board, err := service.Board(ctx, groupID)
				if err != nil {
					return backoff.Permanent(err)
				}

				logBoard(board)

				if !board.Status.Healthy {
					return errUnhealthyBoard
				}
				return nil
			},
			backoff.WithContext(b, ctx),
			func(err error, d time.Duration) {
				log.Warn().Err(err).Dur("backoff", d).Msg("Backing off board updates")
			},
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func logBoard(board *ctdf.Board) {
	for _, routeBoard := range board.Routes {
		for _, departure := range routeBoard.Departures {
			log.Info().
				Str("group", routeBoard.GroupID).
				Str("destination", departure.Destination).
				Str("status", departure.RawStatusText).
				Str("countdown", departure.DisplayCountdown).
				Bool("urgent", departure.Urgent).
				Msg("Departure")
		}
	}

	log.Info().
		Bool("healthy", board.Status.Healthy).
		Str("warning", board.Status.Warning).
		Msg(board.Status.Message)
}
