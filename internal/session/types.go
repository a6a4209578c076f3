// Package session defines the per-user conversation state and the store
// that owns it.
package session

import (
	"errors"
	"strings"
)

// Turn roles. History alternates user, model, user, model... starting with user.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Tool ids toggled per user. ToolBrowse stays a user-facing toggle but is no
// longer accepted by the provider as a generic tool object, so prompt
// assembly excludes it from the wire tool list.
const (
	ToolSearch = "search"
	ToolBrowse = "browse"
)

// Part kinds.
const (
	PartText   = "text"
	PartInline = "inline"
	PartFile   = "file"
)

// ErrEmptyTurn indicates a turn was constructed with no parts.
var ErrEmptyTurn = errors.New("turn has no parts")

// Part is one element of a turn: plain text, inline media bytes, or a
// reference to a staged provider asset. Exactly one variant is populated.
type Part struct {
	Kind string
	Text string
	Mime string
	Data []byte
	// FileName is the provider-side resource name of a staged asset.
	FileName string
	// FileURI is the provider-side URI referenced in the prompt payload.
	FileURI string
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// InlinePart builds an inline media part.
func InlinePart(mime string, data []byte) Part {
	return Part{Kind: PartInline, Mime: mime, Data: data}
}

// FilePart builds a staged asset reference part.
func FilePart(mime, name, uri string) Part {
	return Part{Kind: PartFile, Mime: mime, FileName: name, FileURI: uri}
}

// Turn is one role-tagged ordered set of parts exchanged with the provider.
type Turn struct {
	Role  string
	Parts []Part
}

// NewTurn builds a turn, rejecting the zero-part case.
func NewTurn(role string, parts []Part) (Turn, error) {
	if len(parts) == 0 {
		return Turn{}, ErrEmptyTurn
	}
	return Turn{Role: role, Parts: parts}, nil
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		if p.Kind == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// State is the per-user conversation record. It is owned exclusively by the
// in-flight turn for that user; the store serializes access per key.
type State struct {
	History           []Turn
	SystemInstruction string
	ModelID           string
	EnabledTools      map[string]bool
	ThinkingEnabled   bool
	TotalTokens       int64

	// HistoryLimit bounds len(History); oldest turns are evicted first.
	HistoryLimit int
}

// ToolEnabled reports whether the given tool toggle is set.
func (s *State) ToolEnabled(id string) bool {
	return s.EnabledTools[id]
}

// SetTool flips a single tool toggle. Takes effect on the next turn.
func (s *State) SetTool(id string, enabled bool) {
	if s.EnabledTools == nil {
		s.EnabledTools = map[string]bool{}
	}
	if enabled {
		s.EnabledTools[id] = true
	} else {
		delete(s.EnabledTools, id)
	}
}

// AppendExchange records one user turn paired with one model turn, then
// evicts oldest turns until the bound holds. The model turn may carry an
// empty text part as a placeholder so history never ends on a user turn.
func (s *State) AppendExchange(user, model Turn) {
	s.closeOpenUserTurn()
	s.History = append(s.History, user, model)
	s.evict()
}

// AppendUserOnly records the user turn without a model pair. Used on
// provider failure so the attempted context survives for the next turn; the
// next append pairs it with a placeholder.
func (s *State) AppendUserOnly(user Turn) {
	s.closeOpenUserTurn()
	s.History = append(s.History, user)
	s.evict()
}

// closeOpenUserTurn pairs a trailing unanswered user turn with an empty-text
// model placeholder so user turns stay at even indexes across appends.
func (s *State) closeOpenUserTurn() {
	if n := len(s.History); n > 0 && s.History[n-1].Role == RoleUser {
		s.History = append(s.History, Turn{Role: RoleModel, Parts: []Part{TextPart("")}})
	}
}

// ClearHistory drops the transcript and the token counter but keeps settings.
func (s *State) ClearHistory() {
	s.History = nil
	s.TotalTokens = 0
}

// AddTokens bumps the cumulative token counter.
func (s *State) AddTokens(n int64) {
	if n > 0 {
		s.TotalTokens += n
	}
}

// evict trims from the front until len(History) <= HistoryLimit. Turns are
// removed in user/model pairs so the transcript keeps starting with a user
// turn.
func (s *State) evict() {
	limit := s.HistoryLimit
	if limit <= 0 {
		return
	}
	for len(s.History) > limit {
		drop := 2
		if drop > len(s.History) {
			drop = len(s.History)
		}
		s.History = s.History[drop:]
	}
	// Never leave history starting on a model turn after an odd eviction.
	if len(s.History) > 0 && s.History[0].Role == RoleModel {
		s.History = s.History[1:]
	}
}
