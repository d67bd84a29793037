package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Messenger delivers a text message to a Telegram chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type TelegramMessenger struct {
	apiURL string
	token  string
	client *http.Client
}

func NewTelegramMessenger(apiURL, token string) *TelegramMessenger {
	return &TelegramMessenger{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, text string) error {
	jsonData, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", m.apiURL, m.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram: status %d: %w", resp.StatusCode, err)
	}
	if !result.OK {
		// 403 means the user blocked the bot
		return fmt.Errorf("telegram: %d %s", result.ErrorCode, result.Description)
	}
	return nil
}
