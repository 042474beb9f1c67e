package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/api"
	"github.com/travigo/busboard/pkg/departureboard"
	"github.com/travigo/busboard/pkg/notify"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("BUSBOARD_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("BUSBOARD_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "busboard",
		Description: "Kanachu bus approach board with weather and countdowns",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file, the built in defaults are used when empty",
				EnvVars: []string{"BUSBOARD_CONFIG"},
			},
		},

		Commands: []*cli.Command{
			api.RegisterCLI(),
			departureboard.RegisterCLI(),
			departureboard.RegisterWatchCLI(),
			notify.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
