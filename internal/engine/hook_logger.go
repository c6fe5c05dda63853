package engine

import (
	"context"
	"log"
	"time"
	"unicode/utf8"
)

type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnNodeEnter(_ context.Context, st *State) {
	h.L.Printf("node=%s round=%d history=%d", st.Node, st.Rejections, len(st.History))
}
func (h LoggerHook) OnBeforeLLM(_ context.Context, st *State, role string, msgs []ChatMessage, toolSchemas []ToolSchema) {
	h.L.Printf("%s call: %d msgs, %d tools (cumulative tokens=%d)", role, len(msgs), len(toolSchemas), st.Totals.Total)
}
func (h LoggerHook) OnAfterLLM(_ context.Context, st *State, role string, r LLMResponse) {
	h.L.Printf("%s finish=%s tokens: prompt=%d completion=%d total=%d (cumulative=%d)",
		role, r.FinishReason, r.Usage.Prompt, r.Usage.Completion, r.Usage.Total, st.Totals.Total)
}
func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.L.Printf("tool call %s args=%v", c.Name, c.Args)
}
func (h LoggerHook) OnToolResult(_ context.Context, _ *State, c ToolCall, result string, err error) {
	if err != nil {
		h.L.Printf("tool %s error: %v", c.Name, err)
		return
	}
	h.L.Printf("tool %s result: %s", c.Name, truncate(result, 100))
}
func (h LoggerHook) OnVerdict(_ context.Context, _ *State, v Verdict) {
	h.L.Printf("verdict: met=%v needs_input=%v feedback=%q", v.MetSuccessCriteria, v.RequiredUserInput, truncate(v.Feedback, 120))
}
func (h LoggerHook) OnRetryAttempt(_ context.Context, _ *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	h.L.Printf("retry attempt=%d/%d delay=%v error=%v", attempt, maxAttempts, delay, err)
}
func (h LoggerHook) OnRetryExhausted(_ context.Context, _ *State, err error) {
	h.L.Printf("retries exhausted: %v", err)
}
func (h LoggerHook) OnRoundCapReached(_ context.Context, st *State) {
	h.L.Printf("round cap reached after %d rejections, forcing user input", st.Rejections)
}
func (h LoggerHook) OnTerminal(_ context.Context, st *State) {
	h.L.Printf("terminal: met=%v needs_input=%v rejections=%d tokens=%d",
		st.MetSuccessCriteria, st.RequiredUserInput, st.Rejections, st.Totals.Total)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
