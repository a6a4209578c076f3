package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gemrelay/gemrelay/internal/gemini"
	"github.com/gemrelay/gemrelay/internal/session"
)

// User-visible texts for the failure paths. Every update ends in a chat
// message, never a silent drop.
const (
	replyUnsupported = "I can't read that message type yet. Send me text, a photo, or a file."
	replyFallback    = "I have nothing to say to that. Try rephrasing?"
	replyReset       = "The conversation got into a bad state, so I cleared it. Please start over with /new or just send a new message."
	replyErrorIntro  = "Something went wrong while talking to the model."
	noticeThinking   = "Thinking..."
)

// Resolver sequences one update: build turn, assemble prompt, call provider,
// update history, produce outbound text. It owns the failure-path decisions
// and never lets an error escape to the platform loop.
type Resolver struct {
	store     session.Store
	locker    session.Locker
	builder   *Builder
	generator Generator
	notifier  Notifier
	logger    *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(log *slog.Logger, store session.Store, locker session.Locker, builder *Builder, generator Generator, notifier Notifier) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		store:     store,
		locker:    locker,
		builder:   builder,
		generator: generator,
		notifier:  notifier,
		logger:    log.With(slog.String("service", "resolver")),
	}
}

// Resolve processes one inbound update to completion and returns the reply
// text to send. It always returns something to say.
func (r *Resolver) Resolve(ctx context.Context, in Inbound) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during turn", slog.String("chat_id", in.ChatID), slog.Any("panic", rec))
			reply = replyErrorIntro
		}
	}()

	// One turn in flight per user; overlapping updates from the same chat
	// wait here instead of interleaving history mutations.
	unlock := r.locker.Lock(in.ChatID)
	defer unlock()

	state := r.store.Get(in.ChatID)

	if state.ThinkingEnabled && r.notifier != nil {
		if ref, err := r.notifier.SendNotice(ctx, in.ChatID, noticeThinking); err == nil {
			defer func() {
				if err := r.notifier.DeleteNotice(ctx, ref); err != nil {
					r.logger.Debug("retract notice failed", slog.Any("error", err))
				}
			}()
		}
	}

	turn, err := r.builder.Build(ctx, in, state.ModelID)
	if err != nil {
		if errors.Is(err, ErrEmptyUpdate) {
			return replyUnsupported
		}
		r.logger.Error("build turn failed", slog.String("chat_id", in.ChatID), slog.Any("error", err))
		return replyErrorIntro
	}

	prompt := Assemble(state, turn)
	result, err := r.generator.Generate(ctx, state.ModelID, prompt)
	if err != nil {
		return r.resolveFailure(state, turn, err)
	}

	state.AddTokens(result.Tokens)
	replyText := result.ReplyText
	// Pair the user turn with a model turn even when the reply is empty, so
	// history never ends on a user turn.
	modelTurn := session.Turn{Role: session.RoleModel, Parts: []session.Part{session.TextPart(replyText)}}
	state.AppendExchange(turn, modelTurn)

	if strings.TrimSpace(replyText) == "" {
		return replyFallback
	}
	return replyText
}

// resolveFailure applies the provider-failure history policy: a structurally
// invalid prompt clears the transcript so the same malformed prompt cannot
// repeat; any other failure keeps the attempted user turn as context.
func (r *Resolver) resolveFailure(state *session.State, turn session.Turn, err error) string {
	r.logger.Error("provider call failed", slog.Any("error", err))
	if gemini.IsInvalidPrompt(err) {
		state.ClearHistory()
		return replyReset
	}
	state.AppendUserOnly(turn)

	var provErr *gemini.ProviderError
	if errors.As(err, &provErr) && strings.TrimSpace(provErr.Message) != "" {
		return replyErrorIntro + " " + provErr.Message
	}
	return replyErrorIntro
}
