// Package tui provides a terminal user interface for clonehero2beatsaber
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/james-see/clonehero2beatsaber/pkg/config"
	"github.com/james-see/clonehero2beatsaber/pkg/converter"
	"github.com/james-see/clonehero2beatsaber/pkg/extractor"
)

// Saber-inspired color scheme
var (
	saberRed  = lipgloss.Color("#FF3355")
	saberBlue = lipgloss.Color("#2064FF")
	coolWhite = lipgloss.Color("#E8E8F0")
	darkGray  = lipgloss.Color("#333333")
	dimGray   = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(saberBlue).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(coolWhite).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(saberBlue).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(coolWhite).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(saberRed).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(saberBlue).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(saberRed)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(saberBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
}

var menuItems = []MenuItem{
	{Title: "Convert Song", Description: "Convert a Clone Hero song archive (.zip) to a Beat Saber map"},
	{Title: "Exit", Description: "Exit the application"},
}

// Model represents the TUI model
type Model struct {
	cfg          *config.Config
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	result       *converter.Result
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	result *converter.Result
	err    error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(cfg *config.Config) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".zip"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(saberBlue)

	return Model{
		cfg:        cfg,
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
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
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.err = msg.err
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
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.result = nil
		m.selectedFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	return func() tea.Msg {
		logger := log.New(os.Stderr)
		logger.SetLevel(log.FatalLevel) // keep log lines out of the TUI

		conv, err := converter.New(converter.Options{
			OutputDir:       m.cfg.OutputDirectory,
			DifficultyTable: m.cfg.DifficultyTable(),
			AudioFormat:     m.cfg.AudioTargetFormat,
			Logger:          logger,
		})
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		ex := extractor.New("", logger)
		meta, cleanup, err := ex.Load(context.Background(), m.selectedFile)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		defer cleanup()

		result, err := conv.ConvertSong(context.Background(), meta)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{result: result}
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
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CLONE HERO → BEAT SABER "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(saberRed).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT SONG ARCHIVE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  notes.mid → info.dat + difficulty maps"))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Song:         %s\n", m.result.SongName))
		s.WriteString(fmt.Sprintf("Output:       %s\n", m.result.OutputDir))
		s.WriteString(fmt.Sprintf("Difficulties: %s\n", strings.Join(m.result.Difficulties, ", ")))
		s.WriteString(fmt.Sprintf("Notes:        %d", m.result.NoteCount))

		d := m.result.Diagnostics
		if d.UnmappedNotes > 0 || d.DuplicateOnsets > 0 || d.UnmatchedReleases > 0 {
			s.WriteString("\n\n")
			s.WriteString(warnStyle.Render(fmt.Sprintf(
				"Dropped: %d unmapped, %d duplicate onsets, %d unmatched releases",
				d.UnmappedNotes, d.DuplicateOnsets, d.UnmatchedReleases)))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   ____ _   _ ____  ____  ____
  / ___| | | |___ \| __ )/ ___|
 | |   | |_| | __) |  _ \\___ \
 | |___|  _  |/ __/| |_) |___) |
  \____|_| |_|_____|____/|____/   clone hero → beat saber
`
	return lipgloss.NewStyle().Foreground(saberRed).Render(logo)
}

// Run starts the TUI application
func Run(cfg *config.Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
