// Package sidekick assembles the full assistant: provider clients, the
// session manager with its per-session tool registries, and the task
// submission entry point that drives the engine and checkpoints the result.
package sidekick

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
	"github.com/ChamsBouzaiene/sidekick/internal/sandbox"
	"github.com/ChamsBouzaiene/sidekick/internal/session"
	"github.com/ChamsBouzaiene/sidekick/internal/tools"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/browser"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/filesystem"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/notify"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/websearch"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/wiki"
)

// Options configures the assembled assistant. Zero values pick sensible
// defaults; credentials left empty disable the tools that need them.
type Options struct {
	SandboxDir string // workspace root for file tools (default: ./sandbox)
	DataDir    string // session database and caches (default: user config dir)

	SerperAPIKey    string // enables web_search
	PushoverToken   string // enables send_notification (with PushoverUserKey)
	PushoverUserKey string

	ToolSet *engine.ToolSet // nil = all tool categories
	Hooks   engine.Hooks
	Chat    engine.ChatOptions
}

// Result is the outcome of one task submission.
type Result struct {
	FinalResponse      string
	Feedback           string
	MetSuccessCriteria bool
	RequiredUserInput  bool
	Usage              engine.Usage
}

// Sidekick owns the long-lived pieces of the assistant.
type Sidekick struct {
	clients engine.Clients
	manager *session.Manager
	store   *session.Store
	hooks   engine.Hooks
	chat    engine.ChatOptions

	wikiClient *wiki.Client
}

// New wires the assistant from the given provider clients and options.
func New(ctx context.Context, clients engine.Clients, opts Options) (*Sidekick, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user config dir: %w", err)
		}
		dataDir = filepath.Join(configDir, "sidekick")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}

	sandboxDir := opts.SandboxDir
	if sandboxDir == "" {
		sandboxDir = "sandbox"
	}
	workspace, err := filesystem.NewWorkspace(sandboxDir, nil)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(ctx, filepath.Join(dataDir, "sessions.db"))
	if err != nil {
		return nil, err
	}

	var searchClient *websearch.Client
	if opts.SerperAPIKey != "" {
		searchClient = websearch.NewClient(opts.SerperAPIKey)
	} else {
		log.Printf("WARNING: No Serper API key configured, web_search is disabled.")
	}

	var notifier *notify.Client
	if opts.PushoverToken != "" && opts.PushoverUserKey != "" {
		notifier = notify.NewClient(opts.PushoverToken, opts.PushoverUserKey)
	}

	wikiClient, err := wiki.NewClient(filepath.Join(dataDir, "wiki.bleve"))
	if err != nil {
		log.Printf("WARNING: Failed to open article cache: %v, wiki_lookup is disabled.", err)
		wikiClient = nil
	}

	runner := sandbox.NewDefaultRunner()

	toolSet := engine.FullToolSet()
	if opts.ToolSet != nil {
		toolSet = *opts.ToolSet
	}

	factory := func(ctx context.Context, sessionID string) (engine.ToolRegistry, session.CleanupFunc, error) {
		deps := tools.Deps{
			Workspace: workspace,
			Search:    searchClient,
			Wiki:      wikiClient,
			Runner:    runner,
			Notifier:  notifier,
		}

		var cleanup session.CleanupFunc
		if toolSet.Browser {
			b, err := browser.New()
			if err != nil {
				return nil, nil, err
			}
			deps.Browser = b
			cleanup = b.Close
		}

		registry, err := tools.NewToolRegistry(deps, toolSet)
		if err != nil {
			return nil, nil, err
		}
		return registry, cleanup, nil
	}

	return &Sidekick{
		clients:    clients,
		manager:    session.NewManager(store, factory),
		store:      store,
		hooks:      opts.Hooks,
		chat:       opts.Chat,
		wikiClient: wikiClient,
	}, nil
}

// NewSession provisions a fresh session and returns its ID.
func (s *Sidekick) NewSession(ctx context.Context) (string, error) {
	live, err := s.manager.Create(ctx)
	if err != nil {
		return "", err
	}
	return live.Session.ID, nil
}

// ListSessions returns metadata for all persisted sessions, newest first.
func (s *Sidekick) ListSessions(ctx context.Context) ([]session.Meta, error) {
	return s.manager.List(ctx)
}

// SubmitTask runs one supervised turn in the given session: the user message
// is appended to the session history, the engine drives the
// assistant/evaluator loop to a verdict, and the resulting history is
// checkpointed. On engine failure the session checkpoint is left untouched.
func (s *Sidekick) SubmitTask(ctx context.Context, sessionID, message, successCriteria string) (Result, error) {
	live, err := s.manager.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	history := append(append([]engine.ChatMessage(nil), live.Session.History...), engine.ChatMessage{
		Role:    engine.RoleUser,
		Content: message,
	})

	st := engine.NewTurnState(history, successCriteria)
	if err := engine.Run(ctx, s.clients, live.Registry, st, s.hooks, s.chat); err != nil {
		return Result{}, err
	}

	live.Session.History = st.History
	live.Session.Totals.Prompt += st.Totals.Prompt
	live.Session.Totals.Completion += st.Totals.Completion
	live.Session.Totals.Total += st.Totals.Total
	if err := s.manager.Checkpoint(ctx, live); err != nil {
		return Result{}, fmt.Errorf("failed to checkpoint session %s: %w", sessionID, err)
	}

	return Result{
		FinalResponse:      st.FinalResponse(),
		Feedback:           st.EvaluatorFeedback(),
		MetSuccessCriteria: st.MetSuccessCriteria,
		RequiredUserInput:  st.RequiredUserInput,
		Usage:              st.Totals,
	}, nil
}

// TeardownSession releases the session's transient resources. Its checkpoint
// stays in the store so it can be resumed later.
func (s *Sidekick) TeardownSession(id string) error {
	return s.manager.Teardown(id)
}

// Close tears down every live session and releases shared resources.
func (s *Sidekick) Close() error {
	err := s.manager.TeardownAll()
	if s.wikiClient != nil {
		if cerr := s.wikiClient.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}
