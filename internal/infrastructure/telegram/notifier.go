package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishRunSummary posts a Markdown digest of the run to Telegram.
func (n *Notifier) PublishRunSummary(ctx context.Context, report domain.RunReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatSummary(report))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatSummary(report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Scrape run %s*\n", report.RunID)
	fmt.Fprintf(&b, "Sources: %d/%d ok (%.0f%%)\n",
		report.SourcesSucceeded, report.SourcesAttempted, report.SuccessRate())
	fmt.Fprintf(&b, "Items: %d fetched, %d accepted, %d rejected, %d duplicate\n",
		report.ItemsFetched, report.ItemsAccepted, report.ItemsRejected, report.ItemsDuplicate)
	fmt.Fprintf(&b, "Avg per source: %s", report.AvgTimePerSource().Round(time.Millisecond))

	if len(report.PerSourceErrors) > 0 {
		fmt.Fprintf(&b, "\nFailures: %d", len(report.PerSourceErrors))
	}
	return b.String()
}
