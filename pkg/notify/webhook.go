package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/util"
)

var ErrNotConfigured = errors.New("webhook url not configured")

var placeholderURLs = []string{"YOUR_DISCORD_WEBHOOK_URL_HERE", "changeme"}

const defaultTimeout = 10 * time.Second

// Discord rejects message content longer than this
const maxContentLength = 2000

type webhookPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// WebhookNotifier posts Discord style messages to a single webhook
type WebhookNotifier struct {
	URL        string
	SenderName string
	HTTPClient *http.Client
}

func NewWebhookNotifier(url string, senderName string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:        url,
		SenderName: senderName,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (n *WebhookNotifier) Configured() bool {
	if n == nil {
		return false
	}

	url := strings.TrimSpace(n.URL)
	if url == "" {
		return false
	}
	for _, placeholder := range placeholderURLs {
		if url == placeholder {
			return false
		}
	}
	return true
}

// Send delivers the notification and reports any failure. It never retries.
func (n *WebhookNotifier) Send(ctx context.Context, notification ctdf.Notification) error {
	if !n.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(webhookPayload{
		Content:  formatContent(notification),
		Username: n.SenderName,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to post webhook: %s", resp.Status)
	}

	log.Info().Str("type", string(notification.Type)).Msg("Sent webhook notification")

	return nil
}

// Notify sends in the background; failures are only logged.
func (n *WebhookNotifier) Notify(notification ctdf.Notification) {
	if !n.Configured() {
		log.Debug().Str("type", string(notification.Type)).Msg("Webhook not configured, dropping notification")
		return
	}

	go func() {
		if err := n.Send(context.Background(), notification); err != nil {
			log.Warn().Err(err).Str("type", string(notification.Type)).Msg("Failed to send webhook notification")
		}
	}()
}

func formatContent(notification ctdf.Notification) string {
	content := notification.Message
	if notification.Title != "" {
		content = fmt.Sprintf("**%s**\n%s", notification.Title, notification.Message)
	}
	return util.TrimString(content, maxContentLength)
}
