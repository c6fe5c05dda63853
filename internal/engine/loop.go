package engine

import (
	"context"
	"fmt"
)

// Run drives the state machine for one task submission until it reaches the
// terminal node or fails. On success the state carries the full history, the
// verdict flags, and the accumulated usage; on error no terminal flags are
// set and the caller should not persist the partial state.
func Run(ctx context.Context, c Clients, reg ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	for st.Node != NodeTerminal {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled at node %s: %w", st.Node, err)
		}

		hooks.OnNodeEnter(ctx, st)

		switch st.Node {
		case NodeAssistant:
			if err := assistantStep(ctx, c, reg, st, hooks, opts); err != nil {
				return wrapNodeError(err, st, "llm_call")
			}
			st.Node = routeAfterAssistant(st)

		case NodeTools:
			if err := dispatchStep(ctx, reg, st, hooks, opts); err != nil {
				return wrapNodeError(err, st, "tool_execution")
			}
			st.Node = NodeAssistant

		case NodeEvaluator:
			if err := evaluatorStep(ctx, c, st, hooks, opts); err != nil {
				return wrapNodeError(err, st, "verdict")
			}
			st.Node = routeAfterEvaluator(st)

		default:
			return fmt.Errorf("unknown workflow node: %s", st.Node)
		}
	}

	hooks.OnTerminal(ctx, st)
	return nil
}
