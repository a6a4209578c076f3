package flow

import (
	"github.com/gemrelay/gemrelay/internal/gemini"
	"github.com/gemrelay/gemrelay/internal/session"
)

// Assemble composes the provider prompt from the per-user state and the
// current turn. Pure composition; the state is not mutated.
//
// Only the search tool is passed through to the wire tool list. The browse
// toggle survives as a user setting but the provider no longer accepts it as
// a generic tool object, so it is intentionally excluded here.
func Assemble(state *session.State, current session.Turn) gemini.Prompt {
	prompt := gemini.Prompt{
		SystemInstruction: state.SystemInstruction,
		History:           state.History,
		Current:           current,
	}
	if state.ToolEnabled(session.ToolSearch) {
		prompt.Tools = append(prompt.Tools, session.ToolSearch)
	}
	return prompt
}
