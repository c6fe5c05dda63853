package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// executeTool runs a single tool request: look it up, validate the arguments
// against its schema, then invoke it.
func executeTool(ctx context.Context, call ToolCall, reg ToolRegistry) (string, error) {
	tool, ok := reg[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s (available tools: %v)", call.Name, reg.Names())
	}

	if err := tool.ValidateArgs(call.Args); err != nil {
		return "", err
	}

	return tool.Fn(ctx, call.Args)
}

// dispatchStep services every tool request on the latest assistant message.
// Requests run concurrently; results are committed in request order, one tool
// message per request, correlated by call ID. A failed tool never aborts the
// turn: the failure is reported back to the assistant as the tool result.
func dispatchStep(ctx context.Context, reg ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	calls := st.LatestMessage().ToolCalls
	if len(calls) == 0 {
		return fmt.Errorf("dispatcher entered with no pending tool calls")
	}

	retryConfig := getRetryConfig(opts)
	results := make([]string, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		hooks.OnToolCall(ctx, st, call)

		g.Go(func() error {
			result, err := retryToolCall(
				gctx,
				retryConfig.ToolPolicy,
				call,
				reg,
				func(attempt int, delay time.Duration, retryErr error) {
					hooks.OnRetryAttempt(gctx, st, attempt, retryConfig.ToolPolicy.MaxRetries, delay, retryErr)
				},
			)
			hooks.OnToolResult(gctx, st, call, result, err)
			if err != nil {
				// Surface the failure to the model instead of the caller.
				result = fmt.Sprintf("ERROR: %v", err)
			}
			results[i] = result
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("tool dispatch interrupted: %w", err)
	}

	for i, call := range calls {
		st.Append(ChatMessage{
			Role:    RoleTool,
			Content: results[i],
			Name:    call.ID,
		})
	}

	return nil
}
