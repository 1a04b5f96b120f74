package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/jobs"
)

const userAgent = "Reelforge/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyJobStarted(ctx context.Context, title string) error
	NotifyJobCompleted(ctx context.Context, title, artifactKind string, duration time.Duration) error
	NotifyJobFailed(ctx context.Context, title, reason string) error
	NotifyRenderDegraded(ctx context.Context, title, artifactKind string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a webhook-backed notification service when a webhook URL
// is configured, and a noop implementation otherwise.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Observe wires a service to a tracker so completion, failure, and render
// degradation events push automatically. The returned cancel revokes the
// subscription.
func Observe(ctx context.Context, service Service, tracker *jobs.Tracker) (cancel func()) {
	started := time.Now()
	return tracker.Subscribe(func(event jobs.Event) {
		switch event.Type {
		case jobs.EventCompleted:
			_ = service.NotifyJobCompleted(ctx, event.Job.Title, event.Job.ArtifactKind, time.Since(started))
		case jobs.EventFailed:
			_ = service.NotifyJobFailed(ctx, event.Job.Title, event.Job.LastError())
		}
	})
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type webhookService struct {
	endpoint string
	client   *http.Client
}

func (w *webhookService) NotifyJobStarted(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Reelforge - Render Started",
		message: fmt.Sprintf("Started rendering: %s", title),
		tags:    []string{"reelforge", "job", "started"},
	}
	return w.send(ctx, data)
}

func (w *webhookService) NotifyJobCompleted(ctx context.Context, title, artifactKind string, duration time.Duration) error {
	title = strings.TrimSpace(title)
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var data payload
	if artifactKind == "video" {
		data = payload{
			title:    "Reelforge - Complete",
			message:  fmt.Sprintf("Video ready: %s (%s)", title, duration),
			tags:     []string{"reelforge", "job", "completed"},
			priority: "high",
		}
	} else {
		data = payload{
			title:   "Reelforge - Complete (degraded)",
			message: fmt.Sprintf("Deliverable ready as %s: %s (%s)", artifactKind, title, duration),
			tags:    []string{"reelforge", "job", "completed", "degraded"},
		}
	}
	return w.send(ctx, data)
}

func (w *webhookService) NotifyJobFailed(ctx context.Context, title, reason string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Render failed: %s", title)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Reelforge - Failed",
		message:  message,
		tags:     []string{"reelforge", "job", "failed"},
		priority: "high",
	}
	return w.send(ctx, data)
}

func (w *webhookService) NotifyRenderDegraded(ctx context.Context, title, artifactKind string) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Reelforge - Render Degraded",
		message: fmt.Sprintf("Encoding failed for %s; produced %s instead\nManual review recommended", title, artifactKind),
		tags:    []string{"reelforge", "render", "degraded"},
	}
	return w.send(ctx, data)
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reelforge - Test",
		message:  "Notification system test",
		tags:     []string{"reelforge", "test"},
		priority: "low",
	}
	return w.send(ctx, data)
}

func (w *webhookService) send(ctx context.Context, data payload) error {
	if w == nil || w.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobStarted(context.Context, string) error { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, string) error      { return nil }
func (noopService) NotifyRenderDegraded(context.Context, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
