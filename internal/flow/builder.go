package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gemrelay/gemrelay/internal/session"
	"github.com/gemrelay/gemrelay/internal/sniff"
)

// Builder produces a canonical turn from one inbound update. Attachment
// failures degrade to in-band text so a turn with any usable content still
// reaches the provider.
type Builder struct {
	fetcher Fetcher
	stager  *Stager
	logger  *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(log *slog.Logger, fetcher Fetcher, stager *Stager) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		fetcher: fetcher,
		stager:  stager,
		logger:  log.With(slog.String("service", "builder")),
	}
}

// Build extracts text (body, else caption), then fetches, sniffs, and places
// the attachment when present. Text part goes first, media part second.
// Returns ErrEmptyUpdate when nothing usable remains.
func (b *Builder) Build(ctx context.Context, in Inbound, modelID string) (session.Turn, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		text = strings.TrimSpace(in.Caption)
	}

	var parts []session.Part
	if text != "" {
		parts = append(parts, session.TextPart(text))
	}
	if in.Attachment != nil {
		parts = append(parts, b.attachmentPart(ctx, *in.Attachment, modelID))
	}
	if len(parts) == 0 {
		return session.Turn{}, ErrEmptyUpdate
	}
	return session.NewTurn(session.RoleUser, parts)
}

// attachmentPart never fails: download or staging errors are substituted
// with a synthetic text part describing the failure.
func (b *Builder) attachmentPart(ctx context.Context, ref AttachmentRef, modelID string) session.Part {
	data, err := b.fetcher.Fetch(ctx, ref)
	if err != nil {
		b.logger.Warn("attachment download failed",
			slog.String("file_id", ref.FileID),
			slog.Any("error", err))
		return session.TextPart("[an attached file could not be downloaded]")
	}

	mime := sniff.Detect(data, ref.FileName)
	if mime == sniff.FallbackMime && strings.TrimSpace(ref.HintMime) != "" {
		mime = strings.TrimSpace(ref.HintMime)
	}

	part, err := b.stager.Place(ctx, data, mime, modelID)
	if err != nil {
		b.logger.Warn("attachment staging failed",
			slog.String("mime", mime),
			slog.String("model", modelID),
			slog.Any("error", err))
		return session.TextPart(fmt.Sprintf("[an attachment of type %s could not be processed]", mime))
	}
	return part
}
