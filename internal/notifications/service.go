// Package notifications pushes run-lifecycle events to an ntfy topic
// and plays the local completion sound. Everything here is
// best-effort: a missing topic or player degrades to silence, never to
// a failed run.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "WhisperFast-Go/0.1.0"

// Service is the notification surface the pipeline talks to.
type Service interface {
	NotifyRunStarted(ctx context.Context, jobs int) error
	NotifyFileCompleted(ctx context.Context, name string) error
	NotifyRunCompleted(ctx context.Context, processed, skipped int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error, name string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a noop one when no
// topic is configured.
func NewService(topic string) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = time.Second
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *retryablehttp.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, jobs int) error {
	data := payload{
		title:   "WhisperFast - Run Started",
		message: fmt.Sprintf("Started transcribing %d file(s)", jobs),
		tags:    []string{"whisperfast", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileCompleted(ctx context.Context, name string) error {
	data := payload{
		title:   "WhisperFast - File Done",
		message: fmt.Sprintf("Transcribed: %s", strings.TrimSpace(name)),
		tags:    []string{"whisperfast", "file", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, processed, skipped int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if skipped == 0 {
		title = "WhisperFast - Run Complete"
		message = fmt.Sprintf("Transcribed %d file(s) in %s", processed, duration)
	} else {
		title = "WhisperFast - Run Cancelled"
		message = fmt.Sprintf("Transcribed %d file(s), skipped %d, in %s", processed, skipped, duration)
	}
	data := payload{
		title:    title,
		message:  message,
		tags:     []string{"whisperfast", "run", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error, name string) error {
	var builder strings.Builder
	builder.WriteString("Run failed")
	if name = strings.TrimSpace(name); name != "" {
		builder.WriteString(" on ")
		builder.WriteString(name)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	data := payload{
		title:    "WhisperFast - Error",
		message:  builder.String(),
		tags:     []string{"whisperfast", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "WhisperFast - Test",
		message:  "Notification system test",
		tags:     []string{"whisperfast", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
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

func (noopService) NotifyRunStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyFileCompleted(context.Context, string) error                 { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
