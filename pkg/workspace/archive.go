package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// staleDirs and staleFiles are the leftovers cleanup moves out of the root
var (
	staleDirs  = []string{"__pycache__", "output_encode", "output_decode"}
	staleFiles = []string{"output_encode", "output_decode"}
	staleExts  = []string{".pyc", ".log"}
)

// IsStale reports whether a root entry is a leftover for the archive
func IsStale(name string, dir bool) bool {
	if dir {
		return slices.Contains(staleDirs, name)
	}
	if slices.Contains(staleFiles, name) {
		return true
	}
	return slices.Contains(staleExts, strings.ToLower(filepath.Ext(name)))
}

// Archive moves stale entries from the root into archive/ and returns how
// many were moved. Only the top level of the root is scanned. A name
// already taken in the archive gets a numeric suffix.
func (w *Workspace) Archive() (int, error) {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		return 0, fmt.Errorf("failed to read workspace: %w", err)
	}

	if err := os.MkdirAll(w.ArchiveDir(), 0755); err != nil {
		return 0, fmt.Errorf("failed to create archive folder: %w", err)
	}

	moved := 0
	for _, e := range entries {
		if !IsStale(e.Name(), e.IsDir()) {
			continue
		}
		src := filepath.Join(w.Root, e.Name())
		dst := w.archivePath(e.Name())
		if err := os.Rename(src, dst); err != nil {
			return moved, fmt.Errorf("failed to archive %s: %w", e.Name(), err)
		}
		moved++
	}
	return moved, nil
}

// archivePath returns a free path in archive/ for name
func (w *Workspace) archivePath(name string) string {
	dst := filepath.Join(w.ArchiveDir(), name)
	if _, err := os.Lstat(dst); os.IsNotExist(err) {
		return dst
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dst = filepath.Join(w.ArchiveDir(), fmt.Sprintf("%s.%d%s", stem, i, ext))
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			return dst
		}
	}
}
