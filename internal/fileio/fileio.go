// Package fileio is the boundary to the local filesystem for import and export.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Picker chooses source and destination paths. ok is false when the user
// cancelled, which is not an error.
type Picker interface {
	Open() (path string, ok bool, err error)
	Save(defaultName string) (path string, ok bool, err error)
}

// PromptPicker resolves paths from preset values and asks on Out before
// overwriting an existing destination unless Force is set.
type PromptPicker struct {
	Path  string
	Force bool
	In    io.Reader
	Out   io.Writer
}

// Open returns the preset path. An empty path counts as a cancelled pick.
func (p PromptPicker) Open() (string, bool, error) {
	path := strings.TrimSpace(p.Path)
	return path, path != "", nil
}

// Save returns the preset path, or defaultName when none is set. An existing
// file is only overwritten with Force or an explicit "y" answer on In.
func (p PromptPicker) Save(defaultName string) (string, bool, error) {
	path := strings.TrimSpace(p.Path)
	if path == "" {
		path = defaultName
	}
	if p.Force {
		return path, true, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, true, nil
		}
		return "", false, err
	}
	if p.In == nil || p.Out == nil {
		return "", false, nil
	}
	fmt.Fprintf(p.Out, "%s exists, overwrite? [y/N] ", path)
	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return path, true, nil
	}
	return "", false, nil
}

// ReadText returns the full content of path.
func ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// WriteText replaces path with content. The file is written beside the
// destination and renamed so readers never see a partial export.
func WriteText(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
