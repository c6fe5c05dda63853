package tools

import (
	"github.com/ChamsBouzaiene/sidekick/internal/engine"
	"github.com/ChamsBouzaiene/sidekick/internal/sandbox"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/browser"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/execution"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/filesystem"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/notify"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/websearch"
	"github.com/ChamsBouzaiene/sidekick/internal/tools/wiki"
)

// Deps holds the backing resources the tools are built on. A nil dependency
// silently disables its category even when the set enables it, so callers can
// run without optional credentials (no Serper key means no web_search).
type Deps struct {
	Workspace *filesystem.Workspace
	Search    *websearch.Client
	Wiki      *wiki.Client
	Runner    sandbox.Runner
	Browser   *browser.Browser
	Notifier  *notify.Client
}

// NewToolRegistry creates a new engine.ToolRegistry based on the provided ToolSet.
func NewToolRegistry(deps Deps, set engine.ToolSet) (engine.ToolRegistry, error) {
	reg := make(engine.ToolRegistry)

	if set.Filesystem && deps.Workspace != nil {
		reg["read_file"] = filesystem.NewReadFileTool(deps.Workspace)
		reg["list_files"] = filesystem.NewListFilesTool(deps.Workspace)
		reg["write_file"] = filesystem.NewWriteFileTool(deps.Workspace)
		reg["delete_file"] = filesystem.NewDeleteFileTool(deps.Workspace)
	}

	if set.Search && deps.Search != nil {
		reg["web_search"] = websearch.NewSearchTool(deps.Search)
	}

	if set.Wiki && deps.Wiki != nil {
		reg["wiki_lookup"] = wiki.NewLookupTool(deps.Wiki)
	}

	if set.Execution && deps.Runner != nil && deps.Workspace != nil {
		reg["run_python"] = execution.NewRunPythonTool(deps.Runner, deps.Workspace.Root())
	}

	if set.Browser && deps.Browser != nil {
		for _, t := range browser.Tools(deps.Browser) {
			reg[t.Name] = t
		}
	}

	if set.Notify && deps.Notifier != nil {
		reg["send_notification"] = notify.NewNotificationTool(deps.Notifier)
	}

	return reg, nil
}
