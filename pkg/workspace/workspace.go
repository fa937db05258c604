// Package workspace manages the folders encoded carriers and decoded
// artifacts are written to
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnvWorkdir overrides the default workspace root
const EnvWorkdir = "STEGOMIDI_WORKDIR"

// Folder names inside the workspace root
const (
	MidFolder       = "mid"
	ArtifactsFolder = "artifacts"
	ArchiveFolder   = "archive"
)

// TitleSuffix marks carriers written by the adaptive encoder
const TitleSuffix = "_timeshift"

// ErrEmptyTitle is returned when a title has nothing left after cleaning
var ErrEmptyTitle = errors.New("empty title")

// DefaultRoot returns $STEGOMIDI_WORKDIR, or the current directory
func DefaultRoot() string {
	if path := os.Getenv(EnvWorkdir); path != "" {
		return path
	}
	return "."
}

// Workspace is a root directory with mid/, artifacts/ and archive/ folders
type Workspace struct {
	Root string
}

// New creates a workspace at root. An empty root uses DefaultRoot.
func New(root string) *Workspace {
	if root == "" {
		root = DefaultRoot()
	}
	return &Workspace{Root: root}
}

// MidDir is where encoded carriers are saved
func (w *Workspace) MidDir() string {
	return filepath.Join(w.Root, MidFolder)
}

// ArtifactsDir is where decoded text is saved
func (w *Workspace) ArtifactsDir() string {
	return filepath.Join(w.Root, ArtifactsFolder)
}

// ArchiveDir is where cleanup moves stale files
func (w *Workspace) ArchiveDir() string {
	return filepath.Join(w.Root, ArchiveFolder)
}

// Ensure creates the workspace folders
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.MidDir(), w.ArtifactsDir(), w.ArchiveDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// CleanTitle trims a title and replaces characters that cannot appear in a
// file name
func CleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	title = strings.TrimSuffix(title, ".mid")
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, title)
	title = strings.Trim(title, ". ")
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// ArtifactName returns the carrier file name for a title. The suffix is not
// doubled, and an empty title gets a random name.
func ArtifactName(title string) string {
	clean, err := CleanTitle(title)
	if err != nil {
		clean = "untitled-" + uuid.New().String()
	}
	if !strings.HasSuffix(clean, TitleSuffix) {
		clean += TitleSuffix
	}
	return clean + ".mid"
}

// SaveArtifact writes an encoded carrier to mid/ and returns its path
func (w *Workspace) SaveArtifact(title string, data []byte) (string, error) {
	if err := os.MkdirAll(w.MidDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create mid folder: %w", err)
	}
	path := filepath.Join(w.MidDir(), ArtifactName(title))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// SaveDecoded writes recovered text to artifacts/<carrier name>.txt
func (w *Workspace) SaveDecoded(carrier, text string) (string, error) {
	if err := os.MkdirAll(w.ArtifactsDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifacts folder: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(carrier), filepath.Ext(carrier))
	path := filepath.Join(w.ArtifactsDir(), base+".txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write decoded text: %w", err)
	}
	return path, nil
}

// Resolve finds a carrier by path or by name inside mid/. The .mid extension
// may be left off.
func (w *Workspace) Resolve(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(w.MidDir(), name))
	}
	if filepath.Ext(name) == "" {
		for _, c := range candidates {
			candidates = append(candidates, c+".mid")
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("carrier %q not found: %w", name, os.ErrNotExist)
}

// Entry is a carrier file in mid/
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List returns the carriers in mid/, sorted by name. A missing folder is
// an empty list.
func (w *Workspace) List() ([]Entry, error) {
	entries, err := os.ReadDir(w.MidDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list mid folder: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mid") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:    e.Name(),
			Path:    filepath.Join(w.MidDir(), e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
