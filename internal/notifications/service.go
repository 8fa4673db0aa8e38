// Package notifications pushes run outcomes to an ntfy topic. With no
// topic configured the service is a noop, so callers never need to check
// whether notifications are enabled.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boxarr/internal/config"
)

const userAgent = "boxarr/1.0"

// Service defines the notification surface exposed to the scheduler.
type Service interface {
	NotifyRunCompleted(ctx context.Context, week string, matched, unmatched, added int) error
	NotifyRunFailed(ctx context.Context, week string, err error) error
	NotifyMoviesAdded(ctx context.Context, week string, titles []string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		runCompleted: cfg.RunCompleted,
		runFailed:    cfg.RunFailed,
		moviesAdded:  cfg.MoviesAdded,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	runCompleted bool
	runFailed    bool
	moviesAdded  bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, week string, matched, unmatched, added int) error {
	if !n.runCompleted {
		return nil
	}
	data := payload{
		title:   "Boxarr - Run Complete",
		message: fmt.Sprintf("Week %s reconciled: %d matched, %d unmatched, %d added", week, matched, unmatched, added),
		tags:    []string{"boxarr", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, week string, err error) error {
	if !n.runFailed {
		return nil
	}
	reason := "unknown"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Boxarr - Run Failed",
		message:  fmt.Sprintf("Week %s reconciliation failed: %s", week, reason),
		tags:     []string{"boxarr", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyMoviesAdded(ctx context.Context, week string, titles []string) error {
	if !n.moviesAdded || len(titles) == 0 {
		return nil
	}
	data := payload{
		title:   "Boxarr - Movies Added",
		message: fmt.Sprintf("Week %s added: %s", week, strings.Join(titles, ", ")),
		tags:    []string{"boxarr", "movies", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Boxarr - Test",
		message:  "Notification system test",
		tags:     []string{"boxarr", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
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

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, int, int, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error            { return nil }
func (noopService) NotifyMoviesAdded(context.Context, string, []string) error       { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
