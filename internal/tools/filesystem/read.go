package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

// maxReadBytes caps file content returned to the model in one call.
const maxReadBytes = 256 * 1024

func readFileImpl(w *Workspace, path string) (string, error) {
	full, err := w.resolve(path)
	if err != nil {
		return "", err
	}

	contentBytes, err := w.fs.ReadFile(full)
	if err != nil {
		return "", err
	}

	truncated := false
	if len(contentBytes) > maxReadBytes {
		contentBytes = contentBytes[:maxReadBytes]
		truncated = true
	}

	content := string(contentBytes)
	result := map[string]any{
		"path":       path,
		"content":    content,
		"line_count": strings.Count(content, "\n") + 1,
		"truncated":  truncated,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewReadFileTool creates the read_file tool bound to a workspace.
func NewReadFileTool(w *Workspace) engine.Tool {
	return engine.Tool{
		Name:        "read_file",
		Description: "Reads the content of a file in your workspace. Provide the file path relative to the workspace root.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path to the file relative to the workspace root"}},"required":["path"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			path, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			return readFileImpl(w, path)
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "filesystem",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
