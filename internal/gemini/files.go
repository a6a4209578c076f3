package gemini

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// Upload stages data through the provider file API and waits until the file
// is ready. The remote asset outlives the call; deletion is an explicit,
// separate operation.
func (c *Client) Upload(ctx context.Context, data []byte, mime, displayName string) (Asset, error) {
	file, err := c.genai.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mime,
		DisplayName: displayName,
	})
	if err != nil {
		return Asset{}, &StagingError{Reason: StagingUploadFailed, Cause: err}
	}
	c.logger.Info("file uploaded",
		slog.String("name", file.Name),
		slog.String("mime", mime),
		slog.String("state", string(file.State)))

	if err := awaitActive(ctx, file.State, pollPolicy{
		attempts: c.pollAttempts,
		interval: c.pollInterval,
		sleep:    c.sleep,
		status: func(ctx context.Context) (genai.FileState, error) {
			return c.fileStatus(ctx, file.Name)
		},
	}); err != nil {
		return Asset{}, err
	}

	// The URI may only be populated once the file is active.
	uri := file.URI
	if uri == "" {
		refreshed, err := c.genai.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return Asset{}, &StagingError{Reason: StagingProcessingFailed, Cause: err}
		}
		uri = refreshed.URI
	}
	return Asset{Name: file.Name, URI: uri, Mime: mime}, nil
}

// DeleteAsset removes a staged file from the provider.
func (c *Client) DeleteAsset(ctx context.Context, asset Asset) error {
	if asset.Name == "" {
		return fmt.Errorf("asset name is required")
	}
	_, err := c.genai.Files.Delete(ctx, asset.Name, nil)
	if err != nil {
		return normalizeError(err)
	}
	return nil
}

func (c *Client) getFileState(ctx context.Context, name string) (genai.FileState, error) {
	file, err := c.genai.Files.Get(ctx, name, nil)
	if err != nil {
		return genai.FileStateUnspecified, err
	}
	return file.State, nil
}

// pollPolicy is the bounded wait-then-recheck policy for asset readiness.
// Fixed spacing, no backoff; this is the only retry loop in the pipeline.
type pollPolicy struct {
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	status   func(ctx context.Context) (genai.FileState, error)
}

// awaitActive drives the Pending -> Ready | Failed | TimedOut transition.
// A Failed state aborts within the current cycle rather than burning the
// remaining attempt budget.
func awaitActive(ctx context.Context, initial genai.FileState, policy pollPolicy) error {
	state := initial
	for attempt := 0; ; attempt++ {
		switch state {
		case genai.FileStateActive:
			return nil
		case genai.FileStateFailed:
			return &StagingError{Reason: StagingProcessingFailed}
		}
		if attempt >= policy.attempts {
			return &StagingError{Reason: StagingProcessingTimeout}
		}
		if err := policy.sleep(ctx, policy.interval); err != nil {
			return &StagingError{Reason: StagingProcessingTimeout, Cause: err}
		}
		next, err := policy.status(ctx)
		if err != nil {
			return &StagingError{Reason: StagingProcessingFailed, Cause: err}
		}
		state = next
	}
}
