package flow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gemrelay/gemrelay/internal/models"
	"github.com/gemrelay/gemrelay/internal/session"
	"github.com/gemrelay/gemrelay/internal/sniff"
)

// Stager decides attachment placement per MIME type and model capability:
// inline bytes for images when the model accepts them, staged upload when
// the model supports the file API, unsupported otherwise.
type Stager struct {
	uploader Uploader
	catalog  *models.Catalog
	logger   *slog.Logger
}

// NewStager creates a Stager.
func NewStager(log *slog.Logger, uploader Uploader, catalog *models.Catalog) *Stager {
	if log == nil {
		log = slog.Default()
	}
	return &Stager{
		uploader: uploader,
		catalog:  catalog,
		logger:   log.With(slog.String("service", "stager")),
	}
}

// Place turns attachment bytes into a prompt part. Inline placement makes no
// network call; staged placement leaves one remote asset alive on success.
func (s *Stager) Place(ctx context.Context, data []byte, mime, modelID string) (session.Part, error) {
	caps := s.catalog.Capabilities(modelID)
	if sniff.IsImage(mime) && caps.SupportsInline {
		return session.InlinePart(mime, data), nil
	}
	if caps.SupportsStagedUpload {
		displayName := "upload-" + uuid.NewString()
		asset, err := s.uploader.Upload(ctx, data, mime, displayName)
		if err != nil {
			return session.Part{}, err
		}
		s.logger.Info("attachment staged",
			slog.String("mime", mime),
			slog.String("asset", asset.Name))
		return session.FilePart(mime, asset.Name, asset.URI), nil
	}
	return session.Part{}, &UnsupportedMediaError{Mime: mime, ModelID: modelID}
}
