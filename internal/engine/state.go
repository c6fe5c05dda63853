// Package engine implements the supervised assistant/evaluator workflow:
// an acting agent attempts a task with tools, an evaluator judges the
// attempt against a caller-supplied success criterion, and a small state
// machine routes between them until the criterion is met or the agent
// needs input from the user.
package engine

// Node identifies a state of the workflow state machine.
type Node string

const (
	NodeAssistant Node = "assistant"
	NodeTools     Node = "tools"
	NodeEvaluator Node = "evaluator"
	NodeTerminal  Node = "terminal"
)

// State is the turn state threaded through the control loop. The orchestrator
// owns all mutation while a run is in flight; a serialized checkpoint of it
// is persisted per session between runs.
type State struct {
	// History is the ordered, append-only conversation log. It never holds
	// a system message: the governing instructions live in the Instructions
	// slot and are resolved into a single leading system message at render
	// time, so re-running the assistant can never stack instructions.
	History      []ChatMessage
	Instructions string

	SuccessCriteria    string  // fixed for the run by the caller
	GivenFeedback      *string // set only after an evaluator rejection
	MetSuccessCriteria bool
	RequiredUserInput  bool

	Node       Node  // current state machine node
	Rejections int   // evaluator rejections this run
	MaxRounds  int   // rejection ceiling before forcing termination (0 = default)
	Totals     Usage // accumulated token usage across all calls
}

// NewTurnState seeds the state for one task submission: persisted history is
// carried over, the verdict flags start fresh.
func NewTurnState(history []ChatMessage, successCriteria string) *State {
	return &State{
		History:         append([]ChatMessage(nil), history...),
		SuccessCriteria: successCriteria,
		Node:            NodeAssistant,
	}
}

func (s *State) Append(msg ChatMessage) { s.History = append(s.History, msg) }

// RenderMessages resolves the instruction slot into the message sequence
// sent to a provider: one system message followed by the history.
func (s *State) RenderMessages() []ChatMessage {
	msgs := make([]ChatMessage, 0, len(s.History)+1)
	if s.Instructions != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: s.Instructions})
	}
	return append(msgs, s.History...)
}

// LatestMessage returns the most recent history entry, or a zero message.
func (s *State) LatestMessage() ChatMessage {
	if len(s.History) == 0 {
		return ChatMessage{}
	}
	return s.History[len(s.History)-1]
}

// FinalResponse returns the agent's own final message of a finished run:
// the second-to-last entry, since the evaluator's feedback is appended last.
func (s *State) FinalResponse() string {
	if len(s.History) < 2 {
		return ""
	}
	return s.History[len(s.History)-2].Content
}

// EvaluatorFeedback returns the evaluator's feedback message of a finished run.
func (s *State) EvaluatorFeedback() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Content
}
