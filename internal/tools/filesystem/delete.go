package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

func deleteFileImpl(w *Workspace, path string) (string, error) {
	full, err := w.resolve(path)
	if err != nil {
		return "", err
	}
	if full == w.root {
		return "", fmt.Errorf("cannot delete the workspace root")
	}

	if err := w.fs.Remove(full); err != nil {
		return "", err
	}

	result := map[string]any{
		"path":    path,
		"deleted": true,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewDeleteFileTool creates the delete_file tool bound to a workspace.
func NewDeleteFileTool(w *Workspace) engine.Tool {
	return engine.Tool{
		Name:        "delete_file",
		Description: "Deletes a file (or empty directory) from your workspace. Provide the path relative to the workspace root.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path to the file relative to the workspace root"}},"required":["path"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			path, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			return deleteFileImpl(w, path)
		},
		// Deleting twice fails the second time; do not retry.
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "filesystem",
		},
	}
}
