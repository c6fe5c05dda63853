package filesystem

import (
	"context"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

func listFilesImpl(w *Workspace, path string, recursive bool, limit int, extraIgnore []string) (string, error) {
	dirPath, err := w.resolve(path)
	if err != nil {
		return "", err
	}

	matcher := w.ignoreMatcher(extraIgnore)

	shouldIgnore := func(relPath string) bool {
		if relPath == IgnoreFile {
			return true
		}
		if matcher != nil {
			return matcher.MatchesPath(relPath)
		}
		return false
	}

	files := make([]string, 0)
	truncated := false

	if recursive {
		err := w.fs.WalkDir(dirPath, func(walkPath string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if walkPath == dirPath {
				return nil
			}

			relPath, err := filepath.Rel(w.root, walkPath)
			if err != nil {
				return nil
			}
			if shouldIgnore(relPath) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			files = append(files, relPath)
			if len(files) >= limit {
				truncated = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", err
		}
	} else {
		entries, err := w.fs.ReadDir(dirPath)
		if err != nil {
			return "", err
		}
		for _, entry := range entries {
			relPath := entry.Name()
			if path != "" {
				relPath = filepath.Join(path, entry.Name())
			}
			if shouldIgnore(relPath) {
				continue
			}
			files = append(files, relPath)
			if len(files) >= limit {
				truncated = true
				break
			}
		}
	}

	result := map[string]any{
		"path":      path,
		"files":     files,
		"recursive": recursive,
		"truncated": truncated,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewListFilesTool creates the list_files tool bound to a workspace. Patterns
// in the workspace's ignore file are always excluded.
func NewListFilesTool(w *Workspace) engine.Tool {
	return engine.Tool{
		Name:        "list_files",
		Description: "Lists files in your workspace. Use this to discover which files exist before reading them. Supports recursive listing and gitignore-style ignore patterns.",
		SchemaJSON: `{"type":"object","properties":{
			"path":{"type":"string","description":"Optional: subdirectory path relative to the workspace root (empty string for root)"},
			"recursive":{"type":"boolean","description":"If true, list files recursively. Default: false"},
			"limit":{"type":"integer","description":"Maximum number of entries to return. Default: 1000"},
			"ignore_patterns":{"type":"array","items":{"type":"string"},"description":"Extra gitignore-style patterns to exclude"}
		},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			path := ""
			if p, ok := args["path"].(string); ok {
				path = p
			}
			recursive := false
			if r, ok := args["recursive"].(bool); ok {
				recursive = r
			}
			limit := 1000
			if l, ok := args["limit"].(float64); ok && l > 0 {
				limit = int(l)
			}
			var extraIgnore []string
			if patterns, ok := args["ignore_patterns"].([]any); ok {
				for _, p := range patterns {
					if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
						extraIgnore = append(extraIgnore, s)
					}
				}
			}
			return listFilesImpl(w, path, recursive, limit, extraIgnore)
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.1.0",
			Category: "filesystem",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
