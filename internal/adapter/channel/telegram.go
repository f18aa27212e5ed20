package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sourcehound/internal/domain"
)

// TelegramOption configures the Telegram channel.
type TelegramOption func(*TelegramChannel)

// WithTelegramBaseURL overrides the Bot API endpoint (used in tests).
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *TelegramChannel) { t.baseURL = strings.TrimRight(u, "/") }
}

// TelegramChannel implements domain.Channel for Telegram Bot API via long-polling.
type TelegramChannel struct {
	token   string
	handler domain.MessageHandler
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	offset  int64
	done    chan struct{}
}

// NewTelegramChannel creates a Telegram bot channel.
func NewTelegramChannel(token string, logger *slog.Logger, opts ...TelegramOption) *TelegramChannel {
	t := &TelegramChannel{
		token:   token,
		logger:  logger,
		baseURL: "https://api.telegram.org",
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Start begins long-polling for updates. Non-blocking (starts in goroutine).
func (t *TelegramChannel) Start(ctx context.Context, handler domain.MessageHandler) error {
	t.handler = handler

	go t.pollLoop(ctx)
	t.logger.Info("telegram channel started")
	return nil
}

// Stop signals the polling loop to stop.
func (t *TelegramChannel) Stop(_ context.Context) error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}

// Send sends a message to a Telegram chat.
func (t *TelegramChannel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	return t.sendMessage(ctx, msg.SessionID, msg.Content)
}

// Name implements domain.Channel.
func (t *TelegramChannel) Name() string { return "telegram" }

// FetchPost implements domain.PostFetcher. The Bot API offers no method to
// read arbitrary public channel posts, so the capability is always reported
// as unsupported and callers fall back to the link text itself.
func (t *TelegramChannel) FetchPost(_ context.Context, channel, postID string) (string, error) {
	return "", fmt.Errorf("fetch post %s/%s: %w", channel, postID, domain.ErrUnsupported)
}

func (t *TelegramChannel) pollLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
			updates, err := t.getUpdates(ctx)
			if err != nil {
				t.logger.Warn("telegram getUpdates failed", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}

			for _, u := range updates {
				if u.UpdateID >= t.offset {
					t.offset = u.UpdateID + 1
				}
				if u.Message == nil {
					continue
				}

				if u.Message.Text == "" && u.Message.Caption == "" {
					continue
				}

				chatID := strconv.FormatInt(u.Message.Chat.ID, 10)

				// Handle commands first
				if strings.HasPrefix(u.Message.Text, "/") {
					if t.handleCommand(ctx, chatID, u.Message.Text) {
						continue // Command handled, don't run the pipeline
					}
				}

				msg := domain.InboundMessage{
					SessionID:   chatID,
					Content:     u.Message.Text,
					Caption:     u.Message.Caption,
					ChannelName: "telegram",
				}

				// Enrich sender.
				if u.Message.From != nil {
					msg.SenderID = strconv.FormatInt(u.Message.From.ID, 10)
					name := u.Message.From.FirstName
					if u.Message.From.LastName != "" {
						name += " " + u.Message.From.LastName
					}
					msg.SenderName = name
				}

				if err := t.handler(ctx, msg); err != nil {
					t.logger.Error("telegram handler error", "error", err, "chat_id", chatID)
				}
			}
		}
	}
}

// handleCommand processes bot commands. Returns true if command was handled.
func (t *TelegramChannel) handleCommand(ctx context.Context, chatID, content string) bool {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "/start":
		_ = t.sendMessage(ctx, chatID, GreetingText())
		return true
	case "/help":
		_ = t.sendMessage(ctx, chatID, HelpText())
		return true
	default:
		return false // Unknown command, let the pipeline handle it as text
	}
}

// --- Telegram Bot API types ---

type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

type telegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *telegramUser `json:"from,omitempty"`
	Chat      telegramChat  `json:"chat"`
	Text      string        `json:"text"`
	Caption   string        `json:"caption"`
}

type telegramChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type telegramUpdateResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *TelegramChannel) getUpdates(ctx context.Context) ([]telegramUpdate, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=30", t.baseURL, t.token, t.offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API error %d: %s", resp.StatusCode, string(body))
	}

	var result telegramUpdateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if !result.OK {
		return nil, fmt.Errorf("telegram API returned ok=false")
	}

	return result.Result, nil
}

func (t *TelegramChannel) sendMessage(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	payload, err := json.Marshal(telegramSendRequest{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Compile-time interface checks.
var (
	_ domain.Channel     = (*TelegramChannel)(nil)
	_ domain.PostFetcher = (*TelegramChannel)(nil)
)
