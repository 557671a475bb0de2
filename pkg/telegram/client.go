package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSendFailed marks any failure to deliver a message to the Bot API.
var ErrSendFailed = errors.New("telegram: send failed")

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

type SendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type SendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send message via the Bot API sendMessage method
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*SendMessageResponse, error) {
	if c.Token == "" {
		return nil, fmt.Errorf("%w: bot token is not configured", ErrSendFailed)
	}

	jsonData, err := json.Marshal(SendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSendFailed, err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: parse response (status %d): %v", ErrSendFailed, resp.StatusCode, err)
	}

	if !response.OK {
		return &response, fmt.Errorf("%w: %d %s", ErrSendFailed, response.ErrorCode, response.Description)
	}

	return &response, nil
}

// Send simple text message
func (c *Client) SendTextMessage(ctx context.Context, chatID, text string) error {
	_, err := c.SendMessage(ctx, chatID, text)
	return err
}
