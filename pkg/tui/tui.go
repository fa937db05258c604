// Package tui provides a terminal user interface for stegomidi
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/corrupt"
	"github.com/james-see/stegomidi/pkg/workspace"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateEncodeInput
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what a menu item does
type Action int

const (
	ActionEncode Action = iota
	ActionDecode
	ActionCorrupt
	ActionClean
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Encode text", Description: "Hide text in a new MIDI file under mid/", Action: ActionEncode},
	{Title: "Decode file", Description: "Recover the text hidden in a MIDI file", Action: ActionDecode},
	{Title: "Corrupt file", Description: "Shift one random note to test the sync checks", Action: ActionCorrupt},
	{Title: "Clean workspace", Description: "Move caches, logs and old outputs into archive/", Action: ActionClean},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	action       Action
	ws           *workspace.Workspace
	conv         *converter.Converter
	filePicker   filepicker.Model
	spinner      spinner.Model
	textInput    textarea.Model
	titleInput   textinput.Model
	titleFocused bool
	result       viewport.Model
	selectedFile string
	outcome      workDoneMsg
	width        int
	height       int
}

// workDoneMsg signals that an action finished
type workDoneMsg struct {
	headline string
	details  []string
	warnings []string
	body     string
	err      error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model working in ws with conv
func New(ws *workspace.Workspace, conv *converter.Converter) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory = ws.MidDir()
	if _, err := os.Stat(fp.CurrentDirectory); err != nil {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	ta := textarea.New()
	ta.Placeholder = "Text to hide..."
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(8)

	ti := textinput.New()
	ti.Placeholder = "auto_sample_timeshift"
	ti.CharLimit = 120
	ti.Width = 40

	vp := viewport.New(60, 10)

	return Model{
		state:      StateMenu,
		ws:         ws,
		conv:       conv,
		filePicker: fp,
		spinner:    s,
		textInput:  ta,
		titleInput: ti,
		result:     vp,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// the file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.runFileAction())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		if msg.Width > 20 {
			m.textInput.SetWidth(msg.Width - 12)
			m.result.Width = msg.Width - 12
		}
		if msg.Height > 24 {
			m.result.Height = msg.Height - 24
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateEncodeInput:
			return m.updateEncodeInput(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.outcome = msg
		m.result.SetContent(msg.body)
		m.result.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.action = menuItems[m.menuIndex].Action
		switch m.action {
		case ActionExit:
			return m, tea.Quit
		case ActionEncode:
			m.state = StateEncodeInput
			m.textInput.Reset()
			m.titleInput.Reset()
			m.titleFocused = false
			m.titleInput.Blur()
			return m, m.textInput.Focus()
		case ActionClean:
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.clean())
		default:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateEncodeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateMenu
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.titleFocused = !m.titleFocused
		if m.titleFocused {
			m.textInput.Blur()
			return m, m.titleInput.Focus()
		}
		m.titleInput.Blur()
		return m, m.textInput.Focus()
	case "ctrl+s":
		return m.submitEncode()
	case "enter":
		if m.titleFocused {
			return m.submitEncode()
		}
	}

	var cmd tea.Cmd
	if m.titleFocused {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitEncode() (tea.Model, tea.Cmd) {
	text := m.textInput.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.state = StateWorking
	return m, tea.Batch(m.spinner.Tick, m.encode(text, m.titleInput.Value()))
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.outcome = workDoneMsg{}
		m.selectedFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return m, cmd
}

func (m Model) encode(text, title string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.conv.EncodeText(text, title)
		if err != nil {
			return workDoneMsg{err: err}
		}
		path, err := m.ws.SaveArtifact(title, res.Data)
		if err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{
			headline: "Encoding complete!",
			details: []string{
				fmt.Sprintf("Output:  %s", path),
				fmt.Sprintf("Bytes:   %d", len(text)),
				fmt.Sprintf("Events:  %d", res.Events),
				fmt.Sprintf("Markers: %d", res.Markers),
			},
		}
	}
}

func (m Model) runFileAction() tea.Cmd {
	if m.action == ActionCorrupt {
		return m.corruptFile()
	}
	return m.decode()
}

func (m Model) decode() tea.Cmd {
	path := m.selectedFile
	return func() tea.Msg {
		res, err := m.conv.DecodeFile(path)
		if err != nil {
			return workDoneMsg{err: err}
		}

		out := workDoneMsg{
			headline: "Decoding complete!",
			details: []string{
				fmt.Sprintf("Input:   %s", filepath.Base(path)),
				fmt.Sprintf("Bytes:   %d of %d declared", len(res.Payload), res.DeclaredLength),
				fmt.Sprintf("Syncs:   %d", len(res.Syncs)),
			},
			body: res.Text,
		}
		if saved, err := m.ws.SaveDecoded(path, res.Text); err != nil {
			out.warnings = append(out.warnings, fmt.Sprintf("decoded text not saved: %v", err))
		} else {
			out.details = append(out.details, fmt.Sprintf("Saved:   %s", saved))
		}
		for _, c := range res.Mismatches() {
			out.warnings = append(out.warnings, fmt.Sprintf("checksum mismatch at %s", c.Text))
		}
		if n := len(res.Skipped()); n > 0 {
			out.warnings = append(out.warnings, fmt.Sprintf("%d notes skipped", n))
		}
		if res.Truncated() {
			out.warnings = append(out.warnings, "carrier is shorter than its declared length")
		}
		return out
	}
}

func (m Model) corruptFile() tea.Cmd {
	path := m.selectedFile
	return func() tea.Msg {
		output, change, err := corrupt.File(m.conv.MIDI(), path, nil)
		if err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{
			headline: "Corruption complete!",
			details: []string{
				fmt.Sprintf("Input:  %s", filepath.Base(path)),
				fmt.Sprintf("Output: %s", filepath.Base(output)),
				fmt.Sprintf("Change: %s", change),
			},
		}
	}
}

func (m Model) clean() tea.Cmd {
	return func() tea.Msg {
		moved, err := m.ws.Archive()
		if err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{
			headline: "Cleanup complete!",
			details:  []string{fmt.Sprintf("Moved %d entries to %s", moved, m.ws.ArchiveDir())},
		}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateEncodeInput:
		s.WriteString(m.viewEncodeInput())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewEncodeInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" ENCODE TEXT "))
	s.WriteString("\n\n")
	s.WriteString(m.textInput.View())
	s.WriteString("\n\n")
	s.WriteString("Title: ")
	s.WriteString(m.titleInput.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab: switch field • ctrl+s: encode • esc: back to menu"))

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	verb := "DECODE"
	if m.action == ActionCorrupt {
		verb = "CORRUPT"
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT MIDI FILE TO %s ", verb)))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	target := "workspace"
	if m.selectedFile != "" {
		target = filepath.Base(m.selectedFile)
	}
	s.WriteString(fmt.Sprintf("%s %s %s...\n", m.spinner.View(), menuItems[m.menuIndex].Title, target))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  scheme: %s", m.conv.GetScheme().Name())))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.outcome.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Failed: %s", m.outcome.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ " + m.outcome.headline))
		s.WriteString("\n\n")
		s.WriteString(strings.Join(m.outcome.details, "\n"))
		for _, w := range m.outcome.warnings {
			s.WriteString("\n")
			s.WriteString(warnStyle.Render("! " + w))
		}
		if m.outcome.body != "" {
			s.WriteString("\n\n")
			s.WriteString(m.result.View())
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   ____  _                   __  __ ___ ____ ___
  / ___|| |_ ___  __ _  ___ |  \/  |_ _|  _ \_ _|
  \___ \| __/ _ \/ _' |/ _ \| |\/| || || | | | |
   ___) | ||  __/ (_| | (_) | |  | || || |_| | |
  |____/ \__\___|\__, |\___/|_|  |_|___|____/___|
                 |___/
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run(ws *workspace.Workspace, conv *converter.Converter) error {
	p := tea.NewProgram(New(ws, conv), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
