package engine

import (
	"strings"
	"testing"
	"time"
)

func TestBuildInstructions(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	feedback := "The summary missed the second paragraph."

	tests := []struct {
		name        string
		feedback    *string
		wantPresent []string
		wantAbsent  []string
	}{
		{
			name:     "first attempt",
			feedback: nil,
			wantPresent: []string{
				"summarize the article accurately",
				"14/03/2026, 09:26:53",
				"print() statement",
			},
			wantAbsent: []string{"rejected"},
		},
		{
			name:     "after rejection",
			feedback: &feedback,
			wantPresent: []string{
				"summarize the article accurately",
				"The summary missed the second paragraph.",
				"rejected",
			},
		},
		{
			name:       "empty feedback treated as none",
			feedback:   new(string),
			wantAbsent: []string{"rejected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildInstructions("summarize the article accurately", tt.feedback, now)
			for _, want := range tt.wantPresent {
				if !strings.Contains(got, want) {
					t.Errorf("instructions missing %q", want)
				}
			}
			for _, unwanted := range tt.wantAbsent {
				if strings.Contains(got, unwanted) {
					t.Errorf("instructions unexpectedly contain %q", unwanted)
				}
			}
		})
	}
}

func TestRenderMessagesSingleSystemMessage(t *testing.T) {
	st := NewTurnState([]ChatMessage{{Role: RoleUser, Content: "hi"}}, "criterion")

	// Resolve twice to simulate a retry after rejection. The slot must
	// replace, never stack.
	st.Instructions = buildInstructions(st.SuccessCriteria, nil, time.Now())
	fb := "do better"
	st.Instructions = buildInstructions(st.SuccessCriteria, &fb, time.Now())

	msgs := st.RenderMessages()
	systemCount := 0
	for _, m := range msgs {
		if m.Role == RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Fatalf("system messages = %d, want 1", systemCount)
	}
	if msgs[0].Role != RoleSystem || !strings.Contains(msgs[0].Content, "do better") {
		t.Errorf("leading system message = %+v", msgs[0])
	}
	if len(st.History) != 1 {
		t.Errorf("rendering must not touch history, got %d messages", len(st.History))
	}
}

func TestRouteAfterAssistant(t *testing.T) {
	st := NewTurnState(nil, "c")

	st.Append(ChatMessage{Role: RoleAssistant, Content: "done"})
	if got := routeAfterAssistant(st); got != NodeEvaluator {
		t.Errorf("plain response routed to %s, want evaluator", got)
	}

	st.Append(ChatMessage{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "echo"}}})
	if got := routeAfterAssistant(st); got != NodeTools {
		t.Errorf("tool-call response routed to %s, want tools", got)
	}
}
