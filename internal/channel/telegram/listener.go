package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gemrelay/gemrelay/internal/flow"
)

// Resolver processes one inbound update to completion and returns the reply
// text. Implemented by the flow package.
type Resolver interface {
	Resolve(ctx context.Context, in flow.Inbound) string
}

// Listener long-polls for updates and dispatches commands and turns.
type Listener struct {
	client      *Client
	resolver    Resolver
	commands    *Commands
	logger      *slog.Logger
	pollTimeout int
}

// NewListener creates a Listener.
func NewListener(log *slog.Logger, client *Client, resolver Resolver, commands *Commands, pollTimeout int) *Listener {
	if log == nil {
		log = slog.Default()
	}
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Listener{
		client:      client,
		resolver:    resolver,
		commands:    commands,
		logger:      log.With(slog.String("adapter", "telegram")),
		pollTimeout: pollTimeout,
	}
}

// Run consumes updates until the context is cancelled. Each update is
// handled in its own goroutine; the session store serializes turns per chat.
func (l *Listener) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = l.pollTimeout
	updates := l.client.bot.GetUpdatesChan(updateConfig)
	l.logger.Info("listening", slog.String("username", l.client.Username()))

	for {
		select {
		case <-ctx.Done():
			l.client.bot.StopReceivingUpdates()
			// Drain so the library's polling goroutine can exit; an
			// in-flight long poll otherwise keeps the getUpdates session
			// alive and conflicts with the next start.
			for range updates {
			}
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				l.logger.Info("updates channel closed")
				return nil
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			go l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	var reply string
	if msg.IsCommand() {
		reply = l.commands.Handle(ctx, msg)
	} else {
		reply = l.resolver.Resolve(ctx, buildInbound(msg))
	}
	if strings.TrimSpace(reply) == "" {
		return
	}
	if err := l.client.SendText(chatID, reply); err != nil {
		l.logger.Error("send reply failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// buildInbound classifies one Telegram message into the canonical inbound
// shape: text or caption plus at most one attachment reference.
func buildInbound(msg *tgbotapi.Message) flow.Inbound {
	in := flow.Inbound{
		ChatID:  strconv.FormatInt(msg.Chat.ID, 10),
		Text:    strings.TrimSpace(msg.Text),
		Caption: strings.TrimSpace(msg.Caption),
	}
	in.Attachment = pickAttachment(msg)
	return in
}

// pickAttachment selects the single attachment reference the pipeline
// consumes, with the platform's MIME hint and filename when available.
func pickAttachment(msg *tgbotapi.Message) *flow.AttachmentRef {
	switch {
	case len(msg.Photo) > 0:
		photo := pickPhoto(msg.Photo)
		return &flow.AttachmentRef{FileID: photo.FileID, HintMime: "image/jpeg"}
	case msg.Document != nil:
		return &flow.AttachmentRef{
			FileID:   msg.Document.FileID,
			HintMime: msg.Document.MimeType,
			FileName: msg.Document.FileName,
		}
	case msg.Voice != nil:
		return &flow.AttachmentRef{FileID: msg.Voice.FileID, HintMime: msg.Voice.MimeType}
	case msg.Audio != nil:
		return &flow.AttachmentRef{
			FileID:   msg.Audio.FileID,
			HintMime: msg.Audio.MimeType,
			FileName: msg.Audio.FileName,
		}
	case msg.Video != nil:
		return &flow.AttachmentRef{
			FileID:   msg.Video.FileID,
			HintMime: msg.Video.MimeType,
			FileName: msg.Video.FileName,
		}
	case msg.VideoNote != nil:
		return &flow.AttachmentRef{FileID: msg.VideoNote.FileID, HintMime: "video/mp4"}
	case msg.Animation != nil:
		return &flow.AttachmentRef{
			FileID:   msg.Animation.FileID,
			HintMime: msg.Animation.MimeType,
			FileName: msg.Animation.FileName,
		}
	case msg.Sticker != nil:
		return &flow.AttachmentRef{FileID: msg.Sticker.FileID, HintMime: "image/webp"}
	default:
		return nil
	}
}

// pickPhoto returns the largest size variant of a photo.
func pickPhoto(items []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := items[0]
	for _, item := range items[1:] {
		if item.FileSize > best.FileSize {
			best = item
			continue
		}
		if item.Width*item.Height > best.Width*best.Height {
			best = item
		}
	}
	return best
}
