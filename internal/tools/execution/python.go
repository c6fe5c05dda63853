// Package execution provides the run_python tool, backed by the sandbox
// package for isolation.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
	"github.com/ChamsBouzaiene/sidekick/internal/sandbox"
)

const (
	pythonBinary      = "python3"
	defaultRunTimeout = 60 * time.Second
	maxOutputBytes    = 64 * 1024
)

func runPythonImpl(ctx context.Context, runner sandbox.Runner, workDir, code string, timeout time.Duration) (string, error) {
	// The script lands inside the workspace so the sandbox mount covers it.
	script, err := os.CreateTemp(workDir, "snippet-*.py")
	if err != nil {
		return "", fmt.Errorf("failed to stage script: %w", err)
	}
	scriptPath := script.Name()
	defer os.Remove(scriptPath)

	if _, err := script.WriteString(code); err != nil {
		script.Close()
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := script.Close(); err != nil {
		return "", err
	}

	res, runErr := runner.RunCmd(ctx, workDir, pythonBinary, []string{filepath.Base(scriptPath)}, timeout)

	result := map[string]any{
		"stdout":    clip(res.Stdout),
		"stderr":    clip(res.Stderr),
		"exit_code": res.Code,
		"timed_out": res.TimedOut,
	}
	if res.Stdout == "" && res.Code == 0 && !res.TimedOut {
		result["hint"] = "No output captured. Use print() to observe results."
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}

	// A nonzero exit is a result for the model, not a tool failure; only
	// infrastructure problems surface as errors.
	if runErr != nil && res.Stdout == "" && res.Stderr == "" && !res.TimedOut {
		return "", runErr
	}
	return string(resultJSON), nil
}

func clip(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... output truncated ..."
}

// NewRunPythonTool creates the run_python tool bound to a sandbox runner and
// workspace directory.
func NewRunPythonTool(runner sandbox.Runner, workDir string) engine.Tool {
	return engine.Tool{
		Name:        "run_python",
		Description: "Executes a Python snippet in an isolated environment and returns its output. You must include a print() statement to observe results. The workspace directory is the working directory.",
		SchemaJSON:  `{"type":"object","properties":{"code":{"type":"string","description":"The Python code to execute"},"timeout_seconds":{"type":"integer","description":"Execution timeout in seconds. Default: 60"}},"required":["code"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			code, ok := args["code"].(string)
			if !ok || strings.TrimSpace(code) == "" {
				return "", fmt.Errorf("code must be a non-empty string")
			}
			timeout := defaultRunTimeout
			if secs, ok := args["timeout_seconds"].(float64); ok && secs > 0 {
				timeout = time.Duration(secs) * time.Second
			}
			return runPythonImpl(ctx, runner, workDir, code, timeout)
		},
		// Executed code may have side effects; never re-run it blindly.
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "execution",
		},
	}
}
