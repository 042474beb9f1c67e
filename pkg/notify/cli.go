package notify

import (
	"context"
	"errors"

	"github.com/travigo/busboard/pkg/config"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Provides the outbound webhook notifications",
		Subcommands: []*cli.Command{
			{
				Name:  "test",
				Usage: "send a test message to the configured webhook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "message",
						Usage: "Message body to send",
						Value: "テスト通知",
					},
				},
				Action: func(c *cli.Context) error {
					busboardConfig, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					notifier := NewWebhookNotifier(busboardConfig.Webhook.URL, busboardConfig.Webhook.SenderName)
					if !notifier.Configured() {
						return errors.New("set BUSBOARD_WEBHOOK_URL or webhook.url before sending a test message")
					}

					return notifier.Send(context.Background(), ctdf.Notification{
						Type:    ctdf.NotificationTypeTest,
						Message: c.String("message"),
					})
				},
			},
		},
	}
}
