package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

func writeFileImpl(w *Workspace, path, content string) (string, error) {
	full, err := w.resolve(path)
	if err != nil {
		return "", err
	}

	if err := w.fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := w.fs.WriteFile(full, []byte(content), 0644); err != nil {
		return "", err
	}

	result := map[string]any{
		"path":          path,
		"bytes_written": len(content),
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewWriteFileTool creates the write_file tool bound to a workspace.
// Overwrites an existing file; parent directories are created as needed.
func NewWriteFileTool(w *Workspace) engine.Tool {
	return engine.Tool{
		Name:        "write_file",
		Description: "Writes content to a file in your workspace, creating it if needed and overwriting it otherwise. Provide the file path relative to the workspace root.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path to the file relative to the workspace root"},"content":{"type":"string","description":"Full content to write"}},"required":["path","content"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			path, ok := args["path"].(string)
			if !ok {
				return "", fmt.Errorf("path must be a string")
			}
			content, ok := args["content"].(string)
			if !ok {
				return "", fmt.Errorf("content must be a string")
			}
			return writeFileImpl(w, path, content)
		},
		// Overwriting with the same content is idempotent.
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "filesystem",
			Tags:     []string{"idempotent"},
		},
	}
}
