package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/gemrelay/gemrelay/internal/config"
	"github.com/gemrelay/gemrelay/internal/session"
)

// Client is the provider gateway. One instance serves all users.
type Client struct {
	genai        *genai.Client
	logger       *slog.Logger
	pollAttempts int
	pollInterval time.Duration

	// sleep and fileStatus are injectable for tests.
	sleep      func(ctx context.Context, d time.Duration) error
	fileStatus func(ctx context.Context, name string) (genai.FileState, error)
}

// NewClient creates a Client backed by the Gemini API.
func NewClient(ctx context.Context, log *slog.Logger, cfg config.GeminiConfig) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		genai:        inner,
		logger:       log.With(slog.String("service", "gemini")),
		pollAttempts: cfg.PollAttempts,
		pollInterval: cfg.PollInterval(),
	}
	c.sleep = sleepCtx
	c.fileStatus = c.getFileState
	return c, nil
}

// Generate invokes the provider with the full prompt and normalizes the
// outcome. An empty reply is a success, not an error.
func (c *Client) Generate(ctx context.Context, modelID string, prompt Prompt) (TurnResult, error) {
	contents := promptContents(prompt)
	genCfg := generateConfig(prompt)

	resp, err := c.genai.Models.GenerateContent(ctx, modelID, contents, genCfg)
	if err != nil {
		return TurnResult{}, normalizeError(err)
	}

	result := TurnResult{ReplyText: extractText(resp)}
	if total, ok := usageTotal(resp); ok {
		result.Tokens = total
		return result, nil
	}

	// No usage metadata: approximate with a count call over the same prompt.
	// Under-counts true usage (output tokens are not reflected) and is
	// non-fatal on failure.
	count, err := c.countTokens(ctx, modelID, contents, countConfig(prompt))
	if err != nil {
		c.logger.Warn("count tokens failed", slog.String("model", modelID), slog.Any("error", err))
		return result, nil
	}
	result.Tokens = count
	return result, nil
}

// CountTokens estimates the token cost of a prompt without generating.
func (c *Client) CountTokens(ctx context.Context, modelID string, prompt Prompt) (int64, error) {
	return c.countTokens(ctx, modelID, promptContents(prompt), countConfig(prompt))
}

func (c *Client) countTokens(ctx context.Context, modelID string, contents []*genai.Content, cfg *genai.CountTokensConfig) (int64, error) {
	resp, err := c.genai.Models.CountTokens(ctx, modelID, contents, cfg)
	if err != nil {
		return 0, normalizeError(err)
	}
	return int64(resp.TotalTokens), nil
}

// promptContents flattens system-free prompt parts into provider contents:
// bounded history first, current turn last.
func promptContents(prompt Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, turn := range prompt.History {
		contents = append(contents, turnContent(turn))
	}
	contents = append(contents, turnContent(prompt.Current))
	return contents
}

func turnContent(turn session.Turn) *genai.Content {
	role := genai.RoleUser
	if turn.Role == session.RoleModel {
		role = genai.RoleModel
	}
	parts := make([]*genai.Part, 0, len(turn.Parts))
	for _, p := range turn.Parts {
		switch p.Kind {
		case session.PartText:
			parts = append(parts, genai.NewPartFromText(p.Text))
		case session.PartInline:
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.Mime))
		case session.PartFile:
			parts = append(parts, genai.NewPartFromURI(p.FileURI, p.Mime))
		}
	}
	return &genai.Content{Role: role, Parts: parts}
}

func generateConfig(prompt Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if instruction := strings.TrimSpace(prompt.SystemInstruction); instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	for _, tool := range prompt.Tools {
		if tool == session.ToolSearch {
			cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}
	}
	return cfg
}

// countConfig mirrors the generate call shape so the count covers the system
// instruction and tool declarations, not just the contents.
func countConfig(prompt Prompt) *genai.CountTokensConfig {
	gen := generateConfig(prompt)
	return &genai.CountTokensConfig{
		SystemInstruction: gen.SystemInstruction,
		Tools:             gen.Tools,
	}
}

// extractText concatenates the text-bearing parts of the first candidate.
// Missing candidates or parts yield the empty string.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func usageTotal(resp *genai.GenerateContentResponse) (int64, bool) {
	if resp == nil || resp.UsageMetadata == nil {
		return 0, false
	}
	return int64(resp.UsageMetadata.TotalTokenCount), true
}

func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Message: apiErr.Message, Raw: err}
	}
	return &ProviderError{Message: err.Error(), Raw: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
