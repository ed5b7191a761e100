// Package relay bridges session history to the upstream completion API: it
// re-streams fragments to the caller, accumulates the full reply for
// persistence, and degrades upstream failures to in-band sentinel text.
package relay

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clipforge/backend/domain"
	"github.com/clipforge/backend/llm"
	"github.com/clipforge/backend/store"
)

// Completer is the upstream streaming completion call.
type Completer interface {
	CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, callback llm.StreamCallback) (*llm.Usage, error)
	Model() string
}

// EmitFunc forwards one text fragment to the caller. Returning an error
// means the caller is gone; the relay stops forwarding but keeps what it
// already received.
type EmitFunc func(fragment string) error

// Relay runs completion calls over a session's ordered history.
type Relay struct {
	completer   Completer
	store       store.Store
	temperature float64

	mu        sync.Mutex
	lastUsage domain.TokenUsage
}

// New creates a relay that persists replies through st.
func New(completer Completer, st store.Store, temperature float64) *Relay {
	return &Relay{
		completer:   completer,
		store:       st,
		temperature: temperature,
	}
}

// Run streams a completion for the session's history, forwarding each
// fragment through emit. Whatever text accumulates, including a sentinel
// for a classified upstream failure, is persisted as exactly one assistant
// message; upstream failures never propagate to the caller. Returns the
// token usage for this call.
func (r *Relay) Run(ctx context.Context, sessionID string, history []domain.Message, emit EmitFunc) domain.TokenUsage {
	r.setUsage(domain.TokenUsage{})

	text, upstream := r.stream(ctx, history, emit)
	reply := strings.TrimSpace(text)

	usage := r.usageFor(history, reply, upstream)
	r.setUsage(usage)

	// Persistence is not contingent on the client still being attached.
	appendCtx := context.WithoutCancel(ctx)
	msg := domain.Message{Role: domain.RoleAssistant, Content: reply}
	if err := r.store.Append(appendCtx, sessionID, msg); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist assistant reply")
	}
	return usage
}

// Generate drains a completion into a single string without persisting it.
func (r *Relay) Generate(ctx context.Context, history []domain.Message) (string, domain.TokenUsage, error) {
	r.setUsage(domain.TokenUsage{})

	text, upstream := r.stream(ctx, history, func(string) error { return nil })
	reply := strings.TrimSpace(text)

	usage := r.usageFor(history, reply, upstream)
	r.setUsage(usage)
	return reply, usage, nil
}

// LastUsage returns the usage snapshot of the most recent call. Best
// effort: reset at the start of each call.
func (r *Relay) LastUsage() domain.TokenUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsage
}

func (r *Relay) setUsage(u domain.TokenUsage) {
	r.mu.Lock()
	r.lastUsage = u
	r.mu.Unlock()
}

// stream runs the upstream call and returns the accumulated text and the
// upstream-reported usage, if any. Classified failures are turned into a
// final sentinel fragment rather than returned.
func (r *Relay) stream(ctx context.Context, history []domain.Message, emit EmitFunc) (string, *llm.Usage) {
	req := &llm.ChatCompletionRequest{
		Model:         r.completer.Model(),
		Messages:      toWire(history),
		Temperature:   &r.temperature,
		Stream:        true,
		StreamOptions: &llm.StreamOptions{IncludeUsage: true},
	}

	var full strings.Builder
	fragments := 0
	clientGone := false

	usage, err := r.completer.CreateChatCompletionStream(ctx, req, func(chunk *llm.StreamChunk) error {
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			return nil
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			return nil
		}

		full.WriteString(delta)
		fragments++
		if fragments%10 == 0 {
			log.Debug().Int("fragments", fragments).Msg("completion stream progress")
		}

		if err := emit(delta); err != nil {
			clientGone = true
			return err
		}
		return nil
	})

	if err != nil && !clientGone && !errors.Is(err, context.Canceled) {
		cerr := llm.Classify(err)
		log.Warn().Str("kind", string(cerr.Kind)).Err(err).Msg("upstream completion failed")

		sentinel := cerr.Kind.Sentinel() + "\n"
		full.WriteString(sentinel)
		if emitErr := emit(sentinel); emitErr != nil {
			log.Debug().Err(emitErr).Msg("client gone before sentinel delivery")
		}
	}

	return full.String(), usage
}

// usageFor prefers upstream-reported totals and falls back to the len/4
// estimate over prompt and completion text.
func (r *Relay) usageFor(history []domain.Message, reply string, upstream *llm.Usage) domain.TokenUsage {
	if upstream != nil && upstream.TotalTokens > 0 {
		return domain.TokenUsage{
			PromptTokens:     upstream.PromptTokens,
			CompletionTokens: upstream.CompletionTokens,
			TotalTokens:      upstream.TotalTokens,
		}
	}

	chars := 0
	for _, m := range history {
		chars += len(m.Content)
	}
	prompt := chars / 4
	completion := domain.EstimateTokens(reply)
	return domain.TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

func toWire(history []domain.Message) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.ChatMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		})
	}
	return msgs
}
