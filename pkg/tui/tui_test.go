package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/converter/schemes"
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/workspace"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	ws := workspace.New(t.TempDir())
	if err := ws.Ensure(); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	scheme, err := schemes.Lookup("", stego.DefaultConfig())
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	return New(ws, converter.New(scheme))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestMenuNavigation(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "up")
	if m.menuIndex != 0 {
		t.Errorf("menuIndex = %d, want 0", m.menuIndex)
	}

	m = press(t, m, "down", "down", "down", "down", "down", "down")
	if m.menuIndex != len(menuItems)-1 {
		t.Errorf("menuIndex = %d, want %d", m.menuIndex, len(menuItems)-1)
	}

	m = press(t, m, "k")
	if menuItems[m.menuIndex].Action != ActionClean {
		t.Errorf("selected %q, want Clean workspace", menuItems[m.menuIndex].Title)
	}
}

func TestMenuOpensStates(t *testing.T) {
	tests := []struct {
		downs int
		want  State
	}{
		{0, StateEncodeInput},
		{1, StateFilePicker},
		{2, StateFilePicker},
		{3, StateWorking},
	}

	for _, tt := range tests {
		m := newTestModel(t)
		for i := 0; i < tt.downs; i++ {
			m = press(t, m, "down")
		}
		m = press(t, m, "enter")
		if m.state != tt.want {
			t.Errorf("item %d: state = %d, want %d", tt.downs, m.state, tt.want)
		}
		if m.state == StateFilePicker {
			m = press(t, m, "esc")
			if m.state != StateMenu {
				t.Errorf("esc from file picker: state = %d, want menu", m.state)
			}
		}
	}
}

func TestEncodeDecodeFlow(t *testing.T) {
	m := newTestModel(t)

	msg := m.encode("Hello from the terminal", "greeting")()
	done, ok := msg.(workDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("encode returned %#v", msg)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if m.state != StateResult {
		t.Fatalf("state = %d, want result", m.state)
	}
	if !strings.Contains(m.View(), "Encoding complete!") {
		t.Error("result view does not report success")
	}

	path := filepath.Join(m.ws.MidDir(), "greeting_timeshift.mid")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	m.selectedFile = path
	done = m.decode()().(workDoneMsg)
	if done.err != nil {
		t.Fatalf("decode error = %v", done.err)
	}
	if done.body != "Hello from the terminal" {
		t.Errorf("decoded %q", done.body)
	}
	if len(done.warnings) != 0 {
		t.Errorf("unexpected warnings %v", done.warnings)
	}
	if _, err := os.Stat(filepath.Join(m.ws.ArtifactsDir(), "greeting_timeshift.txt")); err != nil {
		t.Errorf("decoded text not saved: %v", err)
	}

	m = press(t, m, "enter")
	if m.state != StateMenu {
		t.Errorf("state = %d, want menu", m.state)
	}
}

func TestCorruptAndCleanFlow(t *testing.T) {
	m := newTestModel(t)
	path, err := m.ws.SaveArtifact("victim", mustEncode(t, m, "The quick brown fox jumps over the lazy dog"))
	if err != nil {
		t.Fatal(err)
	}

	m.selectedFile = path
	done := m.corruptFile()().(workDoneMsg)
	if done.err != nil {
		t.Fatalf("corrupt error = %v", done.err)
	}
	if _, err := os.Stat(filepath.Join(m.ws.MidDir(), "corrupted_victim_timeshift.mid")); err != nil {
		t.Errorf("corrupted copy missing: %v", err)
	}

	if err := os.WriteFile(filepath.Join(m.ws.Root, "run.log"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	done = m.clean()().(workDoneMsg)
	if done.err != nil {
		t.Fatalf("clean error = %v", done.err)
	}
	if !strings.Contains(done.details[0], "Moved 1 entries") {
		t.Errorf("details = %v", done.details)
	}
}

func TestEncodeInputIgnoresEmptySubmit(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "enter")
	next, cmd := m.submitEncode()
	m = next.(Model)
	if m.state != StateEncodeInput || cmd != nil {
		t.Errorf("empty submit should stay in input, state = %d", m.state)
	}
}

func mustEncode(t *testing.T, m Model, text string) []byte {
	t.Helper()
	res, err := m.conv.EncodeText(text, "")
	if err != nil {
		t.Fatal(err)
	}
	return res.Data
}

func TestDecodeReportsUnsavedText(t *testing.T) {
	m := newTestModel(t)
	path, err := m.ws.SaveArtifact("blocked", mustEncode(t, m, "Hello"))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.RemoveAll(m.ws.ArtifactsDir()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.ws.ArtifactsDir(), nil, 0644); err != nil {
		t.Fatal(err)
	}

	m.selectedFile = path
	done := m.decode()().(workDoneMsg)
	if done.err != nil {
		t.Fatalf("decode error = %v", done.err)
	}
	if done.body != "Hello" {
		t.Errorf("decoded %q", done.body)
	}
	if len(done.warnings) != 1 || !strings.Contains(done.warnings[0], "decoded text not saved") {
		t.Errorf("warnings = %v", done.warnings)
	}
}
