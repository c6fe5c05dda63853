package engine

import (
	"context"
	"time"
)

type Hook interface {
	OnNodeEnter(ctx context.Context, st *State)
	OnBeforeLLM(ctx context.Context, st *State, role string, messages []ChatMessage, toolSchemas []ToolSchema)
	OnAfterLLM(ctx context.Context, st *State, role string, resp LLMResponse)
	OnToolCall(ctx context.Context, st *State, call ToolCall)
	OnToolResult(ctx context.Context, st *State, call ToolCall, result string, err error)
	OnVerdict(ctx context.Context, st *State, verdict Verdict)
	// Retry hooks
	OnRetryAttempt(ctx context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error)
	OnRetryExhausted(ctx context.Context, st *State, err error)
	// Termination hooks
	OnRoundCapReached(ctx context.Context, st *State)
	OnTerminal(ctx context.Context, st *State)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnNodeEnter(context.Context, *State)                                      {}
func (NopHook) OnBeforeLLM(context.Context, *State, string, []ChatMessage, []ToolSchema) {}
func (NopHook) OnAfterLLM(context.Context, *State, string, LLMResponse)                  {}
func (NopHook) OnToolCall(context.Context, *State, ToolCall)                             {}
func (NopHook) OnToolResult(context.Context, *State, ToolCall, string, error)            {}
func (NopHook) OnVerdict(context.Context, *State, Verdict)                               {}
func (NopHook) OnRetryAttempt(context.Context, *State, int, int, time.Duration, error)   {}
func (NopHook) OnRetryExhausted(context.Context, *State, error)                          {}
func (NopHook) OnRoundCapReached(context.Context, *State)                                {}
func (NopHook) OnTerminal(context.Context, *State)                                       {}
