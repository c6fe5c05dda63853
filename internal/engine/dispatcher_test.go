package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchStepCorrelatesResults(t *testing.T) {
	reg := ToolRegistry{
		"slow": {
			Name:       "slow",
			SchemaJSON: `{"type":"object"}`,
			Retryable:  true,
			Fn: func(ctx context.Context, _ map[string]any) (string, error) {
				select {
				case <-time.After(20 * time.Millisecond):
				case <-ctx.Done():
					return "", ctx.Err()
				}
				return "slow done", nil
			},
		},
		"fast": {
			Name:       "fast",
			SchemaJSON: `{"type":"object"}`,
			Retryable:  true,
			Fn: func(_ context.Context, _ map[string]any) (string, error) {
				return "fast done", nil
			},
		},
	}

	st := NewTurnState(nil, "c")
	st.Append(ChatMessage{Role: RoleAssistant, ToolCalls: []ToolCall{
		{ID: "call_a", Name: "slow", Args: map[string]any{}},
		{ID: "call_b", Name: "fast", Args: map[string]any{}},
	}})

	if err := dispatchStep(context.Background(), reg, st, nil, noRetryOpts()); err != nil {
		t.Fatalf("dispatchStep: %v", err)
	}

	// Results commit in request order even though "fast" finishes first.
	if len(st.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(st.History))
	}
	first, second := st.History[1], st.History[2]
	if first.Name != "call_a" || first.Content != "slow done" {
		t.Errorf("first result = %+v", first)
	}
	if second.Name != "call_b" || second.Content != "fast done" {
		t.Errorf("second result = %+v", second)
	}
}

func TestDispatchStepReportsFailuresToModel(t *testing.T) {
	reg := ToolRegistry{
		"boom": {
			Name:       "boom",
			SchemaJSON: `{"type":"object"}`,
			Fn: func(_ context.Context, _ map[string]any) (string, error) {
				return "", errors.New("disk full")
			},
		},
	}

	tests := []struct {
		name string
		call ToolCall
		want string
	}{
		{
			name: "tool error",
			call: ToolCall{ID: "c1", Name: "boom", Args: map[string]any{}},
			want: "disk full",
		},
		{
			name: "unknown tool",
			call: ToolCall{ID: "c2", Name: "missing", Args: map[string]any{}},
			want: "unknown tool: missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewTurnState(nil, "c")
			st.Append(ChatMessage{Role: RoleAssistant, ToolCalls: []ToolCall{tt.call}})

			if err := dispatchStep(context.Background(), reg, st, nil, noRetryOpts()); err != nil {
				t.Fatalf("dispatchStep: %v", err)
			}

			msg := st.LatestMessage()
			if msg.Role != RoleTool || msg.Name != tt.call.ID {
				t.Fatalf("result message = %+v", msg)
			}
			if !strings.HasPrefix(msg.Content, "ERROR:") || !strings.Contains(msg.Content, tt.want) {
				t.Errorf("result content = %q, want ERROR containing %q", msg.Content, tt.want)
			}
		})
	}
}

func TestExecuteToolValidatesArgs(t *testing.T) {
	reg := ToolRegistry{
		"typed": {
			Name:       "typed",
			SchemaJSON: `{"type":"object","properties":{"n":{"type":"integer"}},"required":["n"]}`,
			Fn: func(_ context.Context, args map[string]any) (string, error) {
				return fmt.Sprintf("%v", args["n"]), nil
			},
		},
	}

	_, err := executeTool(context.Background(), ToolCall{Name: "typed", Args: map[string]any{}}, reg)
	var valErr *ToolValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ToolValidationError, got %v", err)
	}
	if valErr.ToolName != "typed" {
		t.Errorf("ToolName = %q", valErr.ToolName)
	}

	got, err := executeTool(context.Background(), ToolCall{Name: "typed", Args: map[string]any{"n": 7}}, reg)
	if err != nil {
		t.Fatalf("executeTool: %v", err)
	}
	if got != "7" {
		t.Errorf("result = %q", got)
	}
}

func TestRetryToolCallHonorsRetryableFlag(t *testing.T) {
	var retryableCalls, oneShotCalls atomic.Int32

	reg := ToolRegistry{
		"flaky": {
			Name:       "flaky",
			SchemaJSON: `{"type":"object"}`,
			Retryable:  true,
			Fn: func(_ context.Context, _ map[string]any) (string, error) {
				if retryableCalls.Add(1) == 1 {
					return "", errors.New("connection reset")
				}
				return "ok", nil
			},
		},
		"one_shot": {
			Name:       "one_shot",
			SchemaJSON: `{"type":"object"}`,
			Retryable:  false,
			Fn: func(_ context.Context, _ map[string]any) (string, error) {
				oneShotCalls.Add(1)
				return "", errors.New("connection reset")
			},
		},
	}

	policy := RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	got, err := retryToolCall(context.Background(), policy, ToolCall{Name: "flaky", Args: map[string]any{}}, reg, nil)
	if err != nil {
		t.Fatalf("retryToolCall(flaky): %v", err)
	}
	if got != "ok" || retryableCalls.Load() != 2 {
		t.Errorf("flaky: result=%q calls=%d", got, retryableCalls.Load())
	}

	_, err = retryToolCall(context.Background(), policy, ToolCall{Name: "one_shot", Args: map[string]any{}}, reg, nil)
	if err == nil {
		t.Fatal("expected error from non-retryable tool")
	}
	if oneShotCalls.Load() != 1 {
		t.Errorf("one_shot invoked %d times, want 1", oneShotCalls.Load())
	}
}
