package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/departureboard"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the departure board web page and API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					busboardConfig, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					service, err := departureboard.NewFromConfig(busboardConfig)
					if err != nil {
						return err
					}

					log.Info().
						Str("listen", c.String("listen")).
						Strs("groups", busboardConfig.GroupIDs()).
						Msg("Starting web api")

					return SetupServer(c.String("listen"), service, busboardConfig)
				},
			},
		},
	}
}
