package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cinestelar/cinarr/internal/config"
	"github.com/sirupsen/logrus"
)

const baseURL = "https://api.telegram.org/bot"

// ErrNotFound signals that a channel message id does not exist (or is no
// longer accessible), which the scan engine treats as an empty slot.
var ErrNotFound = errors.New("telegram: message not found")

// APIError is a non-2xx Bot API response
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// Client handles communication with the Telegram Bot API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Bot API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	return &Client{
		baseURL:    baseURL + cfg.BotToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// call performs a Bot API method call and decodes its result envelope
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	c.logger.WithField("method", method).Debug("Making Telegram API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !envelope.OK {
		return &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}

	return nil
}

// FetchMessage inspects one message of the source channel. The Bot API
// has no direct message-by-id lookup for bots, so the message is
// forwarded to the probe chat and the transient copy deleted afterwards.
func (c *Client) FetchMessage(ctx context.Context, channelID, probeChatID, messageID int64) (*Message, error) {
	var msg Message
	err := c.call(ctx, "forwardMessage", map[string]interface{}{
		"chat_id":              probeChatID,
		"from_chat_id":         channelID,
		"message_id":           messageID,
		"disable_notification": true,
	}, &msg)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isMissingMessage(apiErr) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Clean up the forwarded copy, best effort
	if delErr := c.DeleteMessage(ctx, probeChatID, msg.MessageID); delErr != nil {
		c.logger.WithError(delErr).Debug("Failed to delete probe message")
	}

	msg.MessageID = messageID
	return &msg, nil
}

func isMissingMessage(err *APIError) bool {
	desc := strings.ToLower(err.Description)
	return err.Code == 400 && (strings.Contains(desc, "not found") || strings.Contains(desc, "message_id_invalid"))
}

// DeleteMessage removes a message from a chat
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// SendMessage posts a text message and returns the created message
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText rewrites an earlier message, used for progress updates
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	return c.call(ctx, "editMessageText", req, nil)
}

// SendPhoto posts a photo with a caption and returns the created message
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendPhoto", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// PublishAnnouncement posts a catalog announcement to a channel and
// returns the announcement message id. Falls back to a plain text
// message when no poster is available.
func (c *Client) PublishAnnouncement(ctx context.Context, channelID int64, photoURL, caption string) (int64, error) {
	if photoURL != "" {
		msg, err := c.SendPhoto(ctx, SendPhotoRequest{
			ChatID:    channelID,
			Photo:     photoURL,
			Caption:   caption,
			ParseMode: "HTML",
		})
		if err == nil {
			return msg.MessageID, nil
		}
		c.logger.WithError(err).Warn("Failed to publish poster, falling back to text")
	}

	msg, err := c.SendMessage(ctx, SendMessageRequest{
		ChatID:    channelID,
		Text:      caption,
		ParseMode: "HTML",
	})
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}
