package engine

import (
	"context"
	"fmt"
	"time"
)

const assistantPromptBase = `You are an exceptional assistant who leverages tools to complete tasks effectively and efficiently.

You work on the given task until you have additional questions or clarifications for the user, or until the success criteria is met. Your tools let you browse the internet, search the web, look up encyclopedia articles, manage files in your workspace, send notifications, and run Python code. Note that if you run Python code, you must include a print() statement if you want to observe the output.

The current date and time is: %s

This is the success criteria:
%s

Respond either with a question for the user, if and only if additional input is genuinely required, clearly elaborating what is needed, or with the final response once the task is complete.

An example clarification:
Question: Please confirm whether you want a crisp summary or a detailed breakdown.

Otherwise, if you are done, respond with the final output. Just the final output, nothing else.`

const assistantPromptFeedback = `

Previously you considered the task complete, but the success criteria was not met, so the attempt was rejected. Here is the feedback and the reason for the rejection:
%s

Reiterate on the task with this feedback in mind. Ask the user a question only if genuinely required; otherwise analyze what has to be refined, make the changes, and resubmit, ensuring the success criteria is met.`

// buildInstructions assembles the governing instructions for one assistant
// turn. The result lands in the State's instruction slot, so invoking the
// assistant twice in one turn always yields a single, fresh system message.
func buildInstructions(successCriteria string, givenFeedback *string, now time.Time) string {
	prompt := fmt.Sprintf(assistantPromptBase, now.Format("02/01/2006, 15:04:05"), successCriteria)
	if givenFeedback != nil && *givenFeedback != "" {
		prompt += fmt.Sprintf(assistantPromptFeedback, *givenFeedback)
	}
	return prompt
}

// assistantStep runs one acting-agent turn: refresh the instruction slot,
// invoke the reasoning capability bound to the full tool registry, and append
// exactly one message to history. On provider failure nothing is committed.
func assistantStep(ctx context.Context, c Clients, reg ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	st.Instructions = buildInstructions(st.SuccessCriteria, st.GivenFeedback, time.Now())

	msgs := st.RenderMessages()
	retryConfig := getRetryConfig(opts)
	toolSchemas := reg.Schemas()

	hooks.OnBeforeLLM(ctx, st, "assistant", msgs, toolSchemas)

	resp, err := retryLLMCall(
		ctx,
		retryConfig.LLMPolicy,
		c.Assistant,
		c.AssistantModel,
		msgs,
		toolSchemas,
		opts,
		func(attempt int, delay time.Duration, retryErr error) {
			hooks.OnRetryAttempt(ctx, st, attempt, retryConfig.LLMPolicy.MaxRetries, delay, retryErr)
		},
	)
	if err != nil {
		if IsRetryExhausted(err) {
			hooks.OnRetryExhausted(ctx, st, err)
		}
		return &ReasoningError{Role: "assistant", Err: err}
	}

	hooks.OnAfterLLM(ctx, st, "assistant", resp)

	st.Totals.Prompt += resp.Usage.Prompt
	st.Totals.Completion += resp.Usage.Completion
	st.Totals.Total += resp.Usage.Total

	// Tool calls ride along on the assistant message so providers can
	// reconstruct the wire format later.
	assistantMsg := resp.Assistant
	assistantMsg.ToolCalls = resp.ToolCalls
	st.Append(assistantMsg)

	return nil
}

// routeAfterAssistant decides the next node: pending tool requests go to the
// dispatcher, anything else is handed to the evaluator.
func routeAfterAssistant(st *State) Node {
	if len(st.LatestMessage().ToolCalls) > 0 {
		return NodeTools
	}
	return NodeEvaluator
}
