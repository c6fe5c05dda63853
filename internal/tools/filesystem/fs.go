// Package filesystem provides the workspace file tools. Every operation is
// scoped to a root directory; the agent can never reach outside it.
package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile at the workspace root holds gitignore-style patterns hidden from
// list_files.
const IgnoreFile = ".sidekickignore"

// FileSystem defines the filesystem operations the tools need. This allows
// mocking the os package for testing.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
	ReadDir(name string) ([]os.DirEntry, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// OSFileSystem is the default implementation backed by the os package.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (fs *OSFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fs *OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (fs *OSFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

func (fs *OSFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// Workspace is the directory the file tools operate in.
type Workspace struct {
	root string
	fs   FileSystem
}

// NewWorkspace creates the workspace directory if needed and returns it.
func NewWorkspace(root string, fileSys FileSystem) (*Workspace, error) {
	if fileSys == nil {
		fileSys = NewOSFileSystem()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace root %s: %w", root, err)
	}
	if err := fileSys.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", absRoot, err)
	}
	return &Workspace{root: absRoot, fs: fileSys}, nil
}

func (w *Workspace) Root() string { return w.root }

// resolve maps a workspace-relative path to an absolute one, rejecting
// anything that escapes the root.
func (w *Workspace) resolve(path string) (string, error) {
	full := filepath.Clean(filepath.Join(w.root, path))
	if full != w.root && !strings.HasPrefix(full, w.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the workspace", path)
	}
	return full, nil
}

// ignoreMatcher compiles the workspace ignore file plus any extra patterns.
// A missing ignore file yields a matcher over just the extras.
func (w *Workspace) ignoreMatcher(extra []string) *gitignore.GitIgnore {
	var lines []string
	if data, err := w.fs.ReadFile(filepath.Join(w.root, IgnoreFile)); err == nil {
		lines = strings.Split(string(data), "\n")
	}
	lines = append(lines, extra...)
	if len(lines) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(lines...)
}
