package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"PriceSniper/internal/logger"
)

const (
	pollTimeoutSeconds = 30
	pollErrorBackoff   = 5 * time.Second
	replyRetries       = 2
)

// CommandHandler turns one chat command into a reply. An empty reply sends nothing.
type CommandHandler func(command string) string

type telegramUpdate struct {
	UpdateID int              `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// StartPolling long-polls for commands until ctx is cancelled. Only the
// configured chat is served.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		updates, err := t.getUpdates(ctx, offset)
		if ctx.Err() != nil {
			logger.L.Info("telegram polling stopped")
			return
		}
		if err != nil {
			logger.L.Warnf("telegram polling: %v", err)
			if sleepCtx(ctx, pollErrorBackoff) != nil {
				logger.L.Info("telegram polling stopped")
				return
			}
			continue
		}
		offset = t.dispatch(ctx, updates, offset, handler)
	}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.method("getUpdates"), offset, pollTimeoutSeconds)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := t.pollClient
	if client == nil {
		client = t.Client
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return result.Result, nil
}

// dispatch answers each update and returns the next offset to poll from.
func (t *TelegramNotifier) dispatch(ctx context.Context, updates []telegramUpdate, offset int, handler CommandHandler) int {
	for _, u := range updates {
		if u.UpdateID >= offset {
			offset = u.UpdateID + 1
		}
		msg := u.Message
		if msg == nil || strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if strconv.FormatInt(msg.Chat.ID, 10) != t.ChatID {
			logger.L.Warnf("ignoring command from chat %d", msg.Chat.ID)
			continue
		}

		text := strings.TrimSpace(msg.Text)
		logger.L.Infof("received command: %s", text)
		reply := handler(text)
		if reply == "" {
			continue
		}
		if err := t.SendWithRetry(ctx, reply, replyRetries); err != nil {
			logger.L.Errorf("send reply to %q: %v", text, err)
		}
	}
	return offset
}
