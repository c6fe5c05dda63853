package engine

import (
	"context"
	"time"
)

type Hooks []Hook

func (hs Hooks) OnNodeEnter(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnNodeEnter(ctx, st)
	}
}
func (hs Hooks) OnBeforeLLM(ctx context.Context, st *State, role string, m []ChatMessage, schemas []ToolSchema) {
	for _, h := range hs {
		h.OnBeforeLLM(ctx, st, role, m, schemas)
	}
}
func (hs Hooks) OnAfterLLM(ctx context.Context, st *State, role string, r LLMResponse) {
	for _, h := range hs {
		h.OnAfterLLM(ctx, st, role, r)
	}
}
func (hs Hooks) OnToolCall(ctx context.Context, st *State, c ToolCall) {
	for _, h := range hs {
		h.OnToolCall(ctx, st, c)
	}
}
func (hs Hooks) OnToolResult(ctx context.Context, st *State, c ToolCall, s string, e error) {
	for _, h := range hs {
		h.OnToolResult(ctx, st, c, s, e)
	}
}
func (hs Hooks) OnVerdict(ctx context.Context, st *State, v Verdict) {
	for _, h := range hs {
		h.OnVerdict(ctx, st, v)
	}
}
func (hs Hooks) OnRetryAttempt(ctx context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	for _, h := range hs {
		h.OnRetryAttempt(ctx, st, attempt, maxAttempts, delay, err)
	}
}
func (hs Hooks) OnRetryExhausted(ctx context.Context, st *State, err error) {
	for _, h := range hs {
		h.OnRetryExhausted(ctx, st, err)
	}
}
func (hs Hooks) OnRoundCapReached(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnRoundCapReached(ctx, st)
	}
}
func (hs Hooks) OnTerminal(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnTerminal(ctx, st)
	}
}
