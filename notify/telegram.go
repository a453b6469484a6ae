package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API's sendMessage endpoint.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewTelegram(token, chatID string, log zerolog.Logger) *Telegram {
	return &Telegram{
		baseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "telegram").Logger(),
	}
}

// Send posts the message. Failures are logged, not returned: a down
// notifier must never stall or fail a trading cycle.
func (t *Telegram) Send(ctx context.Context, text string) {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		t.log.Error().Err(err).Msg("marshal message")
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.log.Error().Err(err).Msg("create request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.Warn().Err(err).Msg("send failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.log.Warn().Int("status", resp.StatusCode).
			Str("body", string(body)).Msg("send rejected")
	}
}
