package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PriceSniper/internal/logger"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	// maxMessageRunes is the Bot API limit for one sendMessage text.
	maxMessageRunes = 4096
)

// TelegramNotifier talks to one chat through the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	// pollClient outlives the 30s long-poll window.
	pollClient *http.Client
}

// APIError is a non-OK answer from the Bot API.
type APIError struct {
	Status      int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: status %d: %s", e.Status, e.Description)
}

// permanent reports whether retrying the same request cannot succeed.
func (e *APIError) permanent() bool {
	return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusTooManyRequests
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatID:     chatID,
		APIBase:    defaultAPIBase,
		Client:     &http.Client{Timeout: 30 * time.Second, Transport: transport},
		pollClient: &http.Client{Timeout: 35 * time.Second, Transport: transport},
	}
}

func (t *TelegramNotifier) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, name)
}

// Send delivers text to the configured chat once, split into as many
// messages as the length limit requires.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, 0)
}

// SendWithRetry delivers text part by part. Each part is retried on its own,
// so parts already delivered are never sent again.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	parts := splitMessage(text, maxMessageRunes)
	for i, part := range parts {
		if err := t.sendPart(ctx, part, maxRetries); err != nil {
			if len(parts) > 1 {
				return fmt.Errorf("part %d/%d: %w", i+1, len(parts), err)
			}
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]any{
		"chat_id":                  t.ChatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	return decodeAPIError(resp)
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
	var parsed struct {
		Description string `json:"description"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if parsed.Description != "" {
			apiErr.Description = parsed.Description
		}
		apiErr.RetryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
	}
	return apiErr
}

// sendPart retries transient failures with exponential backoff. A 429 waits
// as long as Telegram asks; other 4xx answers are returned at once.
func (t *TelegramNotifier) sendPart(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = t.sendMessage(ctx, text)
		if lastErr == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && apiErr.permanent() {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		wait := time.Duration(1<<uint(attempt)) * time.Second
		if apiErr != nil && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		logger.L.Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", attempt+1, maxRetries+1, lastErr, wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	if maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}

// splitMessage cuts text into pieces of at most limit runes, preferring line
// breaks so HTML tags opened on a line stay balanced.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		for len(r) > limit {
			flush()
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		if curLen+len(r) > limit {
			flush()
		}
		cur.WriteString(string(r))
		curLen += len(r)
	}
	flush()
	return chunks
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
