package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

const slackMaxAttempts = 3

type slackAction struct {
	httpClient *http.Client
	backoff    time.Duration
}

// NewSlackAction creates a new SlackAction instance
func NewSlackAction() interfaces.ActionExecutor {
	return &slackAction{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: time.Second,
	}
}

// reportMessage is the data available to message templates
type reportMessage struct {
	Repository string
	Workflow   string
	WorkflowID int64
	EventType  string
	Files      []string
	Error      string
	Timestamp  time.Time
}

// Execute posts a report notification to a Slack webhook
func (s *slackAction) Execute(ctx context.Context, action model.Action, event model.ReportEvent) error {
	logger := ctxlog.From(ctx)

	slackAction, err := action.ToSlackAction()
	if err != nil {
		return goerr.Wrap(err, "failed to parse slack action")
	}

	webhookURL := os.ExpandEnv(slackAction.WebhookURL)
	if webhookURL == "" {
		return goerr.New("webhook URL is empty after expansion")
	}

	message, err := s.buildMessage(slackAction.Message, event)
	if err != nil {
		return goerr.Wrap(err, "failed to build message", goerr.V("template", slackAction.Message))
	}

	payload := buildSlackPayload(slackAction, event, message)

	for attempt := 1; ; attempt++ {
		status, err := s.sendToSlack(ctx, webhookURL, payload)
		if err == nil {
			logger.Debug("Slack notification sent", slog.Int("attempt", attempt))
			return nil
		}

		if attempt >= slackMaxAttempts || !retryableStatus(status, attempt) {
			return goerr.Wrap(err, "failed to send slack notification", goerr.V("attempts", attempt))
		}

		// 1s, 2s, ...
		backoff := s.backoff * time.Duration(1<<(attempt-1))
		logger.Warn("Failed to send Slack notification, retrying",
			slog.Int("attempt", attempt),
			slog.Int("status", status),
			slog.Duration("backoff", backoff),
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "slack notification cancelled")
		}
	}
}

// retryableStatus reports whether a failed request is worth repeating. Rate
// limiting is retried until attempts run out, server and transport errors once.
func retryableStatus(status, attempt int) bool {
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status == 0 || status >= http.StatusInternalServerError:
		return attempt == 1
	default:
		return false
	}
}

func buildSlackPayload(action *model.SlackAction, event model.ReportEvent, message string) model.SlackPayload {
	payload := model.SlackPayload{
		Text:      message,
		UserName:  action.UserName,
		IconEmoji: action.IconEmoji,
	}
	if action.Color == "" {
		return payload
	}

	attachment := model.Attachment{
		Color:     action.Color,
		Title:     event.Workflow,
		Text:      message,
		Footer:    fmt.Sprintf("octastat - %s", event.Repository),
		Timestamp: time.Now().Unix(),
	}
	if event.WorkflowID != 0 {
		attachment.Fields = append(attachment.Fields, model.Field{Title: "Workflow ID", Value: strconv.FormatInt(event.WorkflowID, 10), Short: true})
	}
	switch event.Type {
	case model.HookReportSuccess:
		attachment.Fields = append(attachment.Fields, model.Field{Title: "Reports", Value: strconv.Itoa(len(event.Files)), Short: true})
	case model.HookReportFailure:
		attachment.Fields = append(attachment.Fields, model.Field{Title: "Error", Value: event.Error})
	}

	payload.Attachments = []model.Attachment{attachment}
	// the attachment carries the message
	payload.Text = ""
	return payload
}

func (s *slackAction) buildMessage(messageTemplate string, event model.ReportEvent) (string, error) {
	tmpl, err := template.New("message").Parse(messageTemplate)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse message template")
	}

	data := reportMessage{
		Repository: event.Repository,
		Workflow:   event.Workflow,
		WorkflowID: event.WorkflowID,
		EventType:  string(event.Type),
		Files:      event.Files,
		Error:      event.Error,
		Timestamp:  time.Now(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute message template")
	}
	return buf.String(), nil
}

// sendToSlack posts payload and returns the response status, or 0 when no
// response was received.
func (s *slackAction) sendToSlack(ctx context.Context, webhookURL string, payload model.SlackPayload) (int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to marshal slack payload")
	}

	ctxlog.From(ctx).Debug("Sending to Slack",
		slog.String("webhook_url", maskWebhookURL(webhookURL)),
		slog.String("payload", string(jsonData)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, goerr.New("slack webhook returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}
	return resp.StatusCode, nil
}

// maskWebhookURL hides the secret path segments of a webhook URL for logging
func maskWebhookURL(url string) string {
	if strings.Contains(url, "hooks.slack.com") {
		parts := strings.Split(url, "/")
		if len(parts) > 3 {
			for i := len(parts) - 3; i < len(parts); i++ {
				if len(parts[i]) > 4 {
					parts[i] = parts[i][:2] + "***"
				}
			}
			return strings.Join(parts, "/")
		}
	}
	if len(url) > 20 {
		return url[:20] + "***"
	}
	return "***"
}
