// Package telegram adapts the Telegram Bot API to the turn pipeline:
// inbound update classification, attachment download, and outbound sends.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gemrelay/gemrelay/internal/flow"
	"github.com/gemrelay/gemrelay/internal/media"
)

const maxMessageLength = 4096

// Client wraps one bot connection. It implements flow.Fetcher and
// flow.Notifier for the turn pipeline.
type Client struct {
	bot           *tgbotapi.BotAPI
	logger        *slog.Logger
	httpClient    *http.Client
	maxAssetBytes int64
}

// NewClient connects to the Bot API with the given token.
func NewClient(log *slog.Logger, token string, maxAssetBytes int64) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Client{
		bot:           bot,
		logger:        log.With(slog.String("adapter", "telegram")),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		maxAssetBytes: maxAssetBytes,
	}, nil
}

// Username returns the bot's own username.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// Fetch resolves a file reference to a download URL and reads the bytes,
// capped at the configured max asset size.
func (c *Client) Fetch(ctx context.Context, ref flow.AttachmentRef) ([]byte, error) {
	if strings.TrimSpace(ref.FileID) == "" {
		return nil, fmt.Errorf("%w: file id is required", media.ErrDownload)
	}
	url, err := c.bot.GetFileDirectURL(ref.FileID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve url: %v", media.ErrDownload, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", media.ErrDownload, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrDownload, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", media.ErrDownload, resp.StatusCode)
	}
	return media.ReadCapped(resp.Body, c.maxAssetBytes)
}

// SendText sends a plain text message, sanitized and truncated to the
// Telegram limit.
func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.sendReturningID(chatID, text)
	return err
}

func (c *Client) sendReturningID(chatID int64, text string) (int, error) {
	text = truncateText(sanitizeText(text))
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendNotice sends the transient "thinking" notice and returns its
// reference for retraction.
func (c *Client) SendNotice(_ context.Context, chatID, text string) (flow.NoticeRef, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return flow.NoticeRef{}, fmt.Errorf("chat id must be numeric: %w", err)
	}
	messageID, err := c.sendReturningID(id, text)
	if err != nil {
		return flow.NoticeRef{}, err
	}
	return flow.NoticeRef{ChatID: chatID, MessageID: messageID}, nil
}

// DeleteNotice retracts a previously sent notice.
func (c *Client) DeleteNotice(_ context.Context, ref flow.NoticeRef) error {
	id, err := strconv.ParseInt(ref.ChatID, 10, 64)
	if err != nil {
		return err
	}
	_, err = c.bot.Request(tgbotapi.NewDeleteMessage(id, ref.MessageID))
	return err
}

// sanitizeText ensures text is valid UTF-8 for the Telegram API.
func sanitizeText(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// truncateText truncates to maxMessageLength on a valid UTF-8 rune boundary,
// appending "..." when truncation occurs.
func truncateText(text string) string {
	if len(text) <= maxMessageLength {
		return text
	}
	const suffix = "..."
	limit := maxMessageLength - len(suffix)
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + suffix
}
