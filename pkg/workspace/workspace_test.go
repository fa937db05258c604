package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"auto_sample", "auto_sample_timeshift.mid"},
		{"auto_sample_timeshift", "auto_sample_timeshift.mid"},
		{"  spaced  ", "spaced_timeshift.mid"},
		{"song.mid", "song_timeshift.mid"},
		{"a/b:c", "a_b_c_timeshift.mid"},
		{"日本語", "日本語_timeshift.mid"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactName(tt.title))
		})
	}
}

func TestArtifactNameUntitled(t *testing.T) {
	a := ArtifactName("")
	b := ArtifactName("  ")
	assert.True(t, strings.HasPrefix(a, "untitled-"))
	assert.True(t, strings.HasSuffix(a, "_timeshift.mid"))
	assert.NotEqual(t, a, b)
}

func TestCleanTitle(t *testing.T) {
	_, err := CleanTitle(" .. ")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	got, err := CleanTitle("line\nbreak")
	require.NoError(t, err)
	assert.Equal(t, "linebreak", got)
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv(EnvWorkdir, "")
	assert.Equal(t, ".", DefaultRoot())
	assert.Equal(t, ".", New("").Root)

	t.Setenv(EnvWorkdir, "/tmp/stego")
	assert.Equal(t, "/tmp/stego", New("").Root)
	assert.Equal(t, "elsewhere", New("elsewhere").Root)
}

func TestEnsure(t *testing.T) {
	w := New(t.TempDir())
	require.NoError(t, w.Ensure())
	for _, dir := range []string{w.MidDir(), w.ArtifactsDir(), w.ArchiveDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSaveResolveList(t *testing.T) {
	w := New(t.TempDir())

	entries, err := w.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	path, err := w.SaveArtifact("fox", []byte("MThd"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.MidDir(), "fox_timeshift.mid"), path)

	_, err = w.SaveArtifact("ant_timeshift", []byte("MThd"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(w.MidDir(), "notes.txt"), nil, 0644))

	entries, err = w.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ant_timeshift.mid", entries[0].Name)
	assert.Equal(t, "fox_timeshift.mid", entries[1].Name)
	assert.Equal(t, int64(4), entries[1].Size)

	for _, name := range []string{"fox_timeshift", "fox_timeshift.mid", path} {
		got, err := w.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, path, got)
	}

	_, err = w.Resolve("missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveDecoded(t *testing.T) {
	w := New(t.TempDir())
	path, err := w.SaveDecoded(filepath.Join("mid", "fox_timeshift.mid"), "hello")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.ArtifactsDir(), "fox_timeshift.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name string
		dir  bool
		want bool
	}{
		{"__pycache__", true, true},
		{"output_encode", true, true},
		{"output_decode", false, true},
		{"encoder.pyc", false, true},
		{"run.LOG", false, true},
		{"mid", true, false},
		{"__pycache__", false, false},
		{"notes.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStale(tt.name, tt.dir))
		})
	}
}

func TestArchive(t *testing.T) {
	root := t.TempDir()
	w := New(root)
	require.NoError(t, w.Ensure())

	require.NoError(t, os.Mkdir(filepath.Join(root, "__pycache__"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "__pycache__", "x.pyc"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.pyc"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "decode.log"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "output_encode"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), nil, 0644))
	// already archived once
	require.NoError(t, os.WriteFile(filepath.Join(w.ArchiveDir(), "decode.log"), nil, 0644))

	moved, err := w.Archive()
	require.NoError(t, err)
	assert.Equal(t, 4, moved)

	for _, name := range []string{"__pycache__", "old.pyc", "decode.log", "output_encode"} {
		_, err := os.Stat(filepath.Join(root, name))
		assert.True(t, os.IsNotExist(err), "%s should be moved", name)
	}
	_, err = os.Stat(filepath.Join(root, "keep.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(w.ArchiveDir(), "decode.1.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(w.ArchiveDir(), "__pycache__", "x.pyc"))
	assert.NoError(t, err)

	moved, err = w.Archive()
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}
