// Package telegram delivers scan alerts to a Telegram chat through the
// Bot API.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	API_URL_TEMPLATE = "https://api.telegram.org/bot%s/sendMessage"
	MAX_MESSAGE_LEN  = 4096
)

type Sender struct {
	Token      string
	ChatID     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewSender reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID from the
// environment. Returns an error when either is unset so scanners can
// fall back to console output.
func NewSender(logger *zap.Logger) (*Sender, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}
	return &Sender{
		Token:      token,
		ChatID:     chatID,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one message to the configured chat. Messages over the
// Bot API limit are truncated with a marker rather than split.
func (s *Sender) Send(text string) error {
	text = StripMarkdown(text)
	if len(text) > MAX_MESSAGE_LEN {
		text = text[:MAX_MESSAGE_LEN-25] + "\n...(message truncated)"
	}

	payload, err := json.Marshal(sendMessageRequest{ChatID: s.ChatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf(API_URL_TEMPLATE, s.Token)
	resp, err := s.HTTPClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var parsed sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("telegram response: %w", err)
	}
	if !parsed.OK {
		s.Logger.Warn("telegram rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("description", parsed.Description))
		return fmt.Errorf("telegram error: %s", parsed.Description)
	}
	s.Logger.Info("telegram message sent", zap.Int("length", len(text)))
	return nil
}

// StripMarkdown removes formatting characters that break plain-text
// sends when headlines contain underscores or asterisks.
func StripMarkdown(text string) string {
	replacer := strings.NewReplacer("*", "", "_", "", "`", "", "[", "(", "]", ")")
	return replacer.Replace(text)
}
