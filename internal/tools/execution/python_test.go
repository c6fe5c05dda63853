package execution

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/sidekick/internal/sandbox"
)

// fakeRunner records the staged script and replays a canned result.
type fakeRunner struct {
	result     sandbox.Result
	err        error
	gotWorkDir string
	gotName    string
	gotArgs    []string
	gotCode    string
}

func (f *fakeRunner) RunCmd(_ context.Context, workDir, name string, args []string, _ time.Duration) (sandbox.Result, error) {
	f.gotWorkDir = workDir
	f.gotName = name
	f.gotArgs = args
	if len(args) == 1 {
		if data, err := os.ReadFile(filepath.Join(workDir, args[0])); err == nil {
			f.gotCode = string(data)
		}
	}
	return f.result, f.err
}

func TestRunPythonCapturesOutput(t *testing.T) {
	runner := &fakeRunner{result: sandbox.Result{Stdout: "42\n"}}
	workDir := t.TempDir()

	tool := NewRunPythonTool(runner, workDir)
	out, err := tool.Fn(context.Background(), map[string]any{"code": "print(6 * 7)"})
	if err != nil {
		t.Fatalf("run_python: %v", err)
	}

	var result struct {
		Stdout   string `json:"stdout"`
		ExitCode int    `json:"exit_code"`
		Hint     string `json:"hint"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if result.Stdout != "42\n" || result.ExitCode != 0 || result.Hint != "" {
		t.Errorf("result = %+v", result)
	}

	if runner.gotName != "python3" || runner.gotWorkDir != workDir {
		t.Errorf("runner invoked with name=%q workDir=%q", runner.gotName, runner.gotWorkDir)
	}
	if runner.gotCode != "print(6 * 7)" {
		t.Errorf("staged code = %q", runner.gotCode)
	}

	// The staged script is removed after the run.
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace not cleaned up: %v", entries)
	}
}

func TestRunPythonSilentCodeGetsHint(t *testing.T) {
	runner := &fakeRunner{result: sandbox.Result{}}

	tool := NewRunPythonTool(runner, t.TempDir())
	out, err := tool.Fn(context.Background(), map[string]any{"code": "x = 1"})
	if err != nil {
		t.Fatalf("run_python: %v", err)
	}
	if !strings.Contains(out, "Use print()") {
		t.Errorf("missing hint: %q", out)
	}
}

func TestRunPythonNonzeroExitIsAResult(t *testing.T) {
	runner := &fakeRunner{
		result: sandbox.Result{Stderr: "NameError: name 'y' is not defined", Code: 1},
		err:    errors.New("exit status 1"),
	}

	tool := NewRunPythonTool(runner, t.TempDir())
	out, err := tool.Fn(context.Background(), map[string]any{"code": "print(y)"})
	if err != nil {
		t.Fatalf("expected traceback as result, got error: %v", err)
	}
	if !strings.Contains(out, "NameError") || !strings.Contains(out, `"exit_code":1`) {
		t.Errorf("out = %q", out)
	}
}

func TestRunPythonInfrastructureFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("Docker daemon not accessible")}

	tool := NewRunPythonTool(runner, t.TempDir())
	if _, err := tool.Fn(context.Background(), map[string]any{"code": "print(1)"}); err == nil {
		t.Fatal("expected infrastructure error to surface")
	}
}

func TestRunPythonRejectsEmptyCode(t *testing.T) {
	tool := NewRunPythonTool(&fakeRunner{}, t.TempDir())
	if _, err := tool.Fn(context.Background(), map[string]any{"code": "  "}); err == nil {
		t.Fatal("expected error for blank code")
	}
}
