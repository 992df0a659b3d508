// Package telegram delivers notifications through the Telegram bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
)

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl sends one sendMessage call per notification.
type Impl struct {
	cfg        models.TelegramConfig
	httpClient HTTPClient
	logger     zerolog.Logger
	baseURL    string
}

// New creates a new Telegram sender.
func New(logger zerolog.Logger, cfg models.TelegramConfig) *Impl {
	return &Impl{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		baseURL:    "https://api.telegram.org",
	}
}

// NewWithClient creates a new Telegram sender with a custom HTTP client and
// base URL (for testing).
func NewWithClient(logger zerolog.Logger, cfg models.TelegramConfig, httpClient HTTPClient, baseURL string) *Impl {
	return &Impl{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// sendMessageRequest is the request body for the Telegram sendMessage API.
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send posts the subject and body as one plain-text message to the
// configured chat.
func (s *Impl) Send(ctx context.Context, n models.Notification) error {
	reqBody := sendMessageRequest{
		ChatID: s.cfg.ChatID,
		Text:   n.Subject + "\n\n" + n.Body,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	s.logger.Debug().Str("chat_id", s.cfg.ChatID).Msg("telegram message sent")
	return nil
}
