// Package flow assembles conversation turns from inbound messages and
// orchestrates the provider call for one update end to end.
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/gemrelay/gemrelay/internal/gemini"
)

// ErrEmptyUpdate indicates the update carried no text, no caption, and no
// recognized attachment.
var ErrEmptyUpdate = errors.New("update has no usable content")

// AttachmentRef is an opaque platform attachment reference plus the hints
// the platform provides alongside it.
type AttachmentRef struct {
	FileID   string
	HintMime string
	FileName string
}

// Inbound is the canonical view of one incoming update: a text-or-caption
// string, an optional attachment reference, and the chat key.
type Inbound struct {
	ChatID     string
	Text       string
	Caption    string
	Attachment *AttachmentRef
}

// UnsupportedMediaError is an attachment the selected model can accept
// neither inline nor via staged upload.
type UnsupportedMediaError struct {
	Mime    string
	ModelID string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("media type %s not supported by model %s", e.Mime, e.ModelID)
}

// Fetcher resolves an attachment reference into raw bytes. Implemented by
// the platform adapter.
type Fetcher interface {
	Fetch(ctx context.Context, ref AttachmentRef) ([]byte, error)
}

// Uploader stages bytes through the provider file API.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mime, displayName string) (gemini.Asset, error)
}

// Generator invokes the provider with an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, modelID string, prompt gemini.Prompt) (gemini.TurnResult, error)
}

// NoticeRef identifies a transient notice message for later retraction.
type NoticeRef struct {
	ChatID    string
	MessageID int
}

// Notifier sends and retracts the transient "thinking" notice. Implemented
// by the platform adapter; retraction failures are swallowed by the caller.
type Notifier interface {
	SendNotice(ctx context.Context, chatID, text string) (NoticeRef, error)
	DeleteNotice(ctx context.Context, ref NoticeRef) error
}
