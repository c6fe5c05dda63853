package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Verdict is the evaluator's structured judgement of one attempt.
type Verdict struct {
	Feedback           string `json:"feedback"`
	MetSuccessCriteria bool   `json:"met_success_criteria"`
	RequiredUserInput  bool   `json:"required_user_input"`
}

const verdictSchemaJSON = `{
	"type": "object",
	"properties": {
		"feedback": {"type": "string"},
		"met_success_criteria": {"type": "boolean"},
		"required_user_input": {"type": "boolean"}
	},
	"required": ["feedback", "met_success_criteria", "required_user_input"],
	"additionalProperties": false
}`

const evaluatorSystemPrompt = `You are an evaluator that determines if a task has been completed successfully by an assistant. Assess the assistant's last response based on the given criteria, be honest, and respond with your feedback as a JSON object with exactly these fields:
  "feedback": your feedback on the assistant's response,
  "met_success_criteria": whether the success criteria has been met (true or false),
  "required_user_input": whether more input is required from the user, or clarifications, or the assistant is stuck (true or false)

Respond with the JSON object only, no other text.`

const evaluatorUserPromptFormat = `You are evaluating a conversation between the user and the assistant. You decide what action to take based on the last response from the assistant.

The entire conversation, with the user's original request and all replies, is:
%s

The success criteria for this task is:
%s

And the final response from the assistant that you are evaluating is:
%s

Respond with your feedback, and decide if the success criteria is met by this response. Also, decide if more user input is required, either because the assistant has a question, needs clarification, or seems to be stuck and unable to answer without help.%s`

const evaluatorPriorFeedbackFormat = `

Also, please take into account that the assistant has already been given this feedback on a previous attempt:
%s

If you see that the assistant is repeating the same mistakes, then consider responding that user input is required.`

// parseVerdict decodes and schema-checks one evaluator response. Providers are
// asked for JSON-only output, but models occasionally wrap the object in
// markdown fences; those are stripped before validation.
func parseVerdict(raw string) (Verdict, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(verdictSchemaJSON),
		gojsonschema.NewStringLoader(trimmed),
	)
	if err != nil {
		return Verdict{}, &VerdictSchemaError{Raw: raw, Errors: []string{err.Error()}}
	}
	if !result.Valid() {
		var errorMsgs []string
		for _, e := range result.Errors() {
			errorMsgs = append(errorMsgs, e.String())
		}
		return Verdict{}, &VerdictSchemaError{Raw: raw, Errors: errorMsgs}
	}

	var v Verdict
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return Verdict{}, &VerdictSchemaError{Raw: raw, Errors: []string{err.Error()}}
	}
	return v, nil
}

// formatTranscript renders history as a labelled plain-text conversation for
// the evaluator. Tool result messages are omitted; an assistant message that
// only requested tools shows up as a placeholder so the evaluator still sees
// that work happened there.
func formatTranscript(history []ChatMessage) string {
	var b strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case RoleUser:
			fmt.Fprintf(&b, "User: %s\n\n", msg.Content)
		case RoleAssistant:
			text := msg.Content
			if text == "" {
				text = "[tool use]"
			}
			fmt.Fprintf(&b, "Assistant: %s\n\n", text)
		case RoleEvaluator:
			fmt.Fprintf(&b, "Evaluator: %s\n\n", msg.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// evaluatorStep judges the assistant's latest response against the success
// criterion and commits the verdict: an evaluator feedback message plus the
// three verdict flags. A malformed verdict is re-requested a bounded number
// of times before the run fails.
func evaluatorStep(ctx context.Context, c Clients, st *State, hooks Hooks, opts ChatOptions) error {
	prior := ""
	if st.GivenFeedback != nil && *st.GivenFeedback != "" {
		prior = fmt.Sprintf(evaluatorPriorFeedbackFormat, *st.GivenFeedback)
	}

	userPrompt := fmt.Sprintf(evaluatorUserPromptFormat,
		formatTranscript(st.History),
		st.SuccessCriteria,
		st.LatestMessage().Content,
		prior,
	)

	msgs := []ChatMessage{
		{Role: RoleSystem, Content: evaluatorSystemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}

	evalOpts := opts
	evalOpts.JSONOnly = true

	retryConfig := getRetryConfig(opts)

	var verdict Verdict
	var lastErr error
	for attempt := 0; attempt < DefaultVerdictAttempts; attempt++ {
		hooks.OnBeforeLLM(ctx, st, "evaluator", msgs, nil)

		resp, err := retryLLMCall(
			ctx,
			retryConfig.LLMPolicy,
			c.Evaluator,
			c.EvaluatorModel,
			msgs,
			nil,
			evalOpts,
			func(a int, delay time.Duration, retryErr error) {
				hooks.OnRetryAttempt(ctx, st, a, retryConfig.LLMPolicy.MaxRetries, delay, retryErr)
			},
		)
		if err != nil {
			if IsRetryExhausted(err) {
				hooks.OnRetryExhausted(ctx, st, err)
			}
			return &ReasoningError{Role: "evaluator", Err: err}
		}

		hooks.OnAfterLLM(ctx, st, "evaluator", resp)

		st.Totals.Prompt += resp.Usage.Prompt
		st.Totals.Completion += resp.Usage.Completion
		st.Totals.Total += resp.Usage.Total

		verdict, lastErr = parseVerdict(resp.Assistant.Content)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return &ReasoningError{Role: "evaluator", Err: lastErr}
	}

	hooks.OnVerdict(ctx, st, verdict)

	st.Append(ChatMessage{
		Role:    RoleEvaluator,
		Content: fmt.Sprintf("Feedback from the evaluator: %s", verdict.Feedback),
	})
	st.GivenFeedback = &verdict.Feedback
	st.MetSuccessCriteria = verdict.MetSuccessCriteria
	st.RequiredUserInput = verdict.RequiredUserInput

	if !verdict.MetSuccessCriteria && !verdict.RequiredUserInput {
		st.Rejections++
		if st.maxRounds() > 0 && st.Rejections >= st.maxRounds() {
			// Hard ceiling: hand the task back to the user instead of
			// looping forever on a criterion the agent cannot satisfy.
			st.RequiredUserInput = true
			hooks.OnRoundCapReached(ctx, st)
		}
	}

	return nil
}

// routeAfterEvaluator ends the run on acceptance or when the agent needs the
// user; otherwise the rejection loops back for another attempt.
func routeAfterEvaluator(st *State) Node {
	if st.MetSuccessCriteria || st.RequiredUserInput {
		return NodeTerminal
	}
	return NodeAssistant
}

func (s *State) maxRounds() int {
	if s.MaxRounds > 0 {
		return s.MaxRounds
	}
	return DefaultMaxRounds
}
