package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Verdict
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"feedback": "solid work", "met_success_criteria": true, "required_user_input": false}`,
			want: Verdict{Feedback: "solid work", MetSuccessCriteria: true},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"feedback\": \"needs detail\", \"met_success_criteria\": false, \"required_user_input\": false}\n```",
			want: Verdict{Feedback: "needs detail"},
		},
		{
			name: "whitespace padded",
			raw:  "  \n{\"feedback\": \"ok\", \"met_success_criteria\": true, \"required_user_input\": false}\n  ",
			want: Verdict{Feedback: "ok", MetSuccessCriteria: true},
		},
		{
			name:    "missing field",
			raw:     `{"feedback": "no flags"}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			raw:     `{"feedback": "x", "met_success_criteria": "yes", "required_user_input": false}`,
			wantErr: true,
		},
		{
			name:    "extra field",
			raw:     `{"feedback": "x", "met_success_criteria": true, "required_user_input": false, "confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "prose not json",
			raw:     "The task looks complete to me.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.raw)
			if tt.wantErr {
				var schemaErr *VerdictSchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected VerdictSchemaError, got %v", err)
				}
				if schemaErr.Raw != tt.raw {
					t.Errorf("Raw not preserved: %q", schemaErr.Raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict: %v", err)
			}
			if got != tt.want {
				t.Errorf("verdict = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatTranscript(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleUser, Content: "fetch the page"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "browse"}}},
		{Role: RoleTool, Name: "1", Content: "<html>raw tool output</html>"},
		{Role: RoleAssistant, Content: "Here is the page summary."},
		{Role: RoleEvaluator, Content: "Feedback from the evaluator: too short."},
	}

	got := formatTranscript(history)

	for _, want := range []string{
		"User: fetch the page",
		"Assistant: [tool use]",
		"Assistant: Here is the page summary.",
		"Evaluator: Feedback from the evaluator: too short.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q\ngot:\n%s", want, got)
		}
	}
	if strings.Contains(got, "raw tool output") {
		t.Error("transcript must not include tool result payloads")
	}
}

func TestEvaluatorStepCommitsVerdict(t *testing.T) {
	evaluator := &scriptedLLM{responses: []LLMResponse{
		verdictResponse("Missing the conclusion section.", false, false),
	}}

	st := NewTurnState([]ChatMessage{
		{Role: RoleUser, Content: "write a report"},
		{Role: RoleAssistant, Content: "Report draft."},
	}, "report has a conclusion")

	err := evaluatorStep(context.Background(), Clients{Evaluator: evaluator}, st, nil, noRetryOpts())
	if err != nil {
		t.Fatalf("evaluatorStep: %v", err)
	}

	if st.MetSuccessCriteria || st.RequiredUserInput {
		t.Errorf("flags = met:%v input:%v, want rejection", st.MetSuccessCriteria, st.RequiredUserInput)
	}
	if st.Rejections != 1 {
		t.Errorf("Rejections = %d, want 1", st.Rejections)
	}
	if st.GivenFeedback == nil || *st.GivenFeedback != "Missing the conclusion section." {
		t.Errorf("GivenFeedback = %v", st.GivenFeedback)
	}
	last := st.LatestMessage()
	if last.Role != RoleEvaluator || last.Content != "Feedback from the evaluator: Missing the conclusion section." {
		t.Errorf("feedback message = %+v", last)
	}
	if got := routeAfterEvaluator(st); got != NodeAssistant {
		t.Errorf("routed to %s, want assistant", got)
	}
}

func TestEvaluatorStepRetriesMalformedVerdict(t *testing.T) {
	evaluator := &scriptedLLM{responses: []LLMResponse{
		textResponse("I think it's fine."),
		verdictResponse("Accepted.", true, false),
	}}

	st := NewTurnState([]ChatMessage{
		{Role: RoleUser, Content: "task"},
		{Role: RoleAssistant, Content: "done"},
	}, "task done")

	err := evaluatorStep(context.Background(), Clients{Evaluator: evaluator}, st, nil, noRetryOpts())
	if err != nil {
		t.Fatalf("evaluatorStep: %v", err)
	}

	if len(evaluator.calls) != 2 {
		t.Errorf("evaluator calls = %d, want 2", len(evaluator.calls))
	}
	if !st.MetSuccessCriteria {
		t.Error("expected acceptance after re-requested verdict")
	}
}

func TestEvaluatorStepFailsAfterRepeatedMalformedVerdicts(t *testing.T) {
	var responses []LLMResponse
	for i := 0; i < DefaultVerdictAttempts; i++ {
		responses = append(responses, textResponse("not json"))
	}
	evaluator := &scriptedLLM{responses: responses}

	st := NewTurnState([]ChatMessage{
		{Role: RoleUser, Content: "task"},
		{Role: RoleAssistant, Content: "done"},
	}, "task done")

	err := evaluatorStep(context.Background(), Clients{Evaluator: evaluator}, st, nil, noRetryOpts())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsReasoningError(err) {
		t.Errorf("expected ReasoningError, got %T", err)
	}
	var schemaErr *VerdictSchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("expected wrapped VerdictSchemaError, got %v", err)
	}
	// A schema failure is an infrastructure fault, not a rejection.
	if st.Rejections != 0 {
		t.Errorf("Rejections = %d, want 0", st.Rejections)
	}
	if len(st.History) != 2 {
		t.Errorf("history mutated on failure: %d messages", len(st.History))
	}
}

func TestEvaluatorStepIncludesPriorFeedbackInPrompt(t *testing.T) {
	evaluator := &scriptedLLM{responses: []LLMResponse{
		verdictResponse("Still wrong.", false, false),
	}}

	prior := "The numbers were off by one."
	st := NewTurnState([]ChatMessage{
		{Role: RoleUser, Content: "count things"},
		{Role: RoleAssistant, Content: "there are 41"},
	}, "count is exact")
	st.GivenFeedback = &prior

	if err := evaluatorStep(context.Background(), Clients{Evaluator: evaluator}, st, nil, noRetryOpts()); err != nil {
		t.Fatalf("evaluatorStep: %v", err)
	}

	prompt := evaluator.calls[0][1].Content
	if !strings.Contains(prompt, prior) {
		t.Error("evaluator prompt missing prior feedback")
	}
	if !strings.Contains(prompt, "repeating the same mistakes") {
		t.Error("evaluator prompt missing stuck-detection instruction")
	}
	if *st.GivenFeedback != "Still wrong." {
		t.Errorf("GivenFeedback not overwritten: %q", *st.GivenFeedback)
	}
}
