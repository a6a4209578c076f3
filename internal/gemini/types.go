// Package gemini wraps the Google GenAI SDK: prompt generation, token
// accounting, and staged file uploads with readiness polling.
package gemini

import (
	"fmt"
	"strings"

	"github.com/gemrelay/gemrelay/internal/session"
)

// Prompt is the full provider input for one turn. Constructed fresh per call.
type Prompt struct {
	SystemInstruction string
	History           []session.Turn
	Current           session.Turn
	// Tools is the wire-level tool id list, already filtered to what the
	// provider accepts.
	Tools []string
}

// TurnResult is a normalized successful generate call. ReplyText may be
// empty; an empty reply is not an error.
type TurnResult struct {
	ReplyText string
	Tokens    int64
}

// Asset references a staged provider file. The provider owns the bytes; the
// core only holds the reference.
type Asset struct {
	Name string
	URI  string
	Mime string
}

// ProviderError is any transport, auth, or validation failure from the
// provider, normalized to carry the provider's message when available.
type ProviderError struct {
	Message string
	Raw     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return "provider error: " + e.Message
	}
	return "provider error"
}

func (e *ProviderError) Unwrap() error {
	return e.Raw
}

// Staging failure reasons.
const (
	StagingUploadFailed      = "upload_failed"
	StagingProcessingFailed  = "processing_failed"
	StagingProcessingTimeout = "processing_timeout"
)

// StagingError is a failed upload or readiness wait for a staged asset.
type StagingError struct {
	Reason string
	Cause  error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging failed: %s", e.Reason)
}

func (e *StagingError) Unwrap() error {
	return e.Cause
}

// invalidPromptMarkers are provider message fragments that indicate the
// prompt itself was structurally rejected rather than a transient failure.
var invalidPromptMarkers = []string{
	"parts must not be empty",
	"contents must not be empty",
	"contents is not specified",
	"empty content",
}

// IsInvalidPrompt reports whether err describes a structurally invalid
// prompt. The orchestrator clears history on this class so the same
// malformed prompt does not repeat indefinitely.
func IsInvalidPrompt(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range invalidPromptMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
