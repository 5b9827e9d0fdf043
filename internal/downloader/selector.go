package downloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectorTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#7FDBFF")).
				Bold(true).
				Padding(0, 1)

	selectorHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A6ADC8")).
				Faint(true)

	selectorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2")).
				Bold(true)

	selectorSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#00F5D4")).
				Bold(true)

	selectorTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EAEAEA"))
)

type trackSelectorModel struct {
	viewport viewport.Model
	title    string
	tracks   []string
	audio    []AudioTrack
	selected int
	ready    bool
	quitting bool
}

func newTrackSelectorModel(title string, tracks []string, audio []AudioTrack) *trackSelectorModel {
	vp := viewport.New(60, 12)
	vp.MouseWheelEnabled = true
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7FDBFF"))

	model := &trackSelectorModel{
		viewport: vp,
		title:    title,
		tracks:   tracks,
		audio:    audio,
		selected: 0,
	}
	vp.SetContent(buildTrackContent(tracks, model.selected))
	model.viewport = vp
	return model
}

func buildTrackContent(tracks []string, selected int) string {
	var b strings.Builder
	b.WriteString(selectorHeaderStyle.Render("  #  stream"))
	b.WriteString("\n")
	for i, track := range tracks {
		line := fmt.Sprintf("%3d  %s", i+1, track)
		if i == selected {
			line = selectorSelectedStyle.Render(line)
		} else {
			line = selectorTrackStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *trackSelectorModel) Init() tea.Cmd {
	return nil
}

func (m *trackSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		borderHeight := 2
		helpHeight := 2
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - headerHeight - borderHeight - helpHeight
		m.viewport, cmd = m.viewport.Update(msg)
		m.ready = true
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.selected = -1
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			} else if len(m.tracks) > 0 {
				m.selected = len(m.tracks) - 1
			}
			m.updateContent()
		case "down", "j":
			if m.selected < len(m.tracks)-1 {
				m.selected++
			} else if len(m.tracks) > 0 {
				m.selected = 0
			}
			m.updateContent()
		case "home", "g":
			if len(m.tracks) > 0 {
				m.selected = 0
			}
			m.updateContent()
		case "end", "G":
			if len(m.tracks) > 0 {
				m.selected = len(m.tracks) - 1
			}
			m.updateContent()
		case "enter":
			if m.selected >= 0 && m.selected < len(m.tracks) {
				m.quitting = true
				return m, tea.Quit
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			n, _ := strconv.Atoi(msg.String())
			if n >= 1 && n <= len(m.tracks) {
				m.selected = n - 1
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *trackSelectorModel) updateContent() {
	m.viewport.SetContent(buildTrackContent(m.tracks, m.selected))

	if m.selected >= 0 {
		targetLine := 1 + m.selected
		viewportTop := m.viewport.YOffset
		viewportBottom := viewportTop + m.viewport.Height - 2
		if targetLine < viewportTop {
			m.viewport.YOffset = targetLine
		} else if targetLine >= viewportBottom {
			m.viewport.YOffset = targetLine - m.viewport.Height + 3
		}
	}
}

func (m *trackSelectorModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(selectorTitleStyle.Render(m.title))
	b.WriteString(" ")

	switch {
	case m.quitting && m.selected >= 0:
		b.WriteString(selectorHelpStyle.Render(fmt.Sprintf("Selected: %s", m.tracks[m.selected])))
	case m.quitting:
		b.WriteString(selectorHelpStyle.Render("Cancelled"))
	default:
		b.WriteString(selectorHelpStyle.Render("↑/↓ select · Enter download · q cancel"))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if !m.quitting {
		if len(m.audio) > 0 {
			b.WriteString(selectorHelpStyle.Render(fmt.Sprintf("audio: %s (muxed in automatically)", audioTrackLabel(m.audio[0], 0))))
		} else {
			b.WriteString(selectorHelpStyle.Render("no separate audio tracks"))
		}
	}
	return b.String()
}

// SelectedTrack returns the chosen index, or -1 when cancelled.
func (m *trackSelectorModel) SelectedTrack() int {
	if m.selected >= 0 && m.selected < len(m.tracks) {
		return m.selected
	}
	return -1
}

// runTrackSelector shows the interactive stream menu and returns the chosen
// 0-based index, or -1 when the user backed out.
func runTrackSelector(title string, tracks []string, audio []AudioTrack) (int, error) {
	model := newTrackSelectorModel(title, tracks, audio)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	if m, ok := result.(*trackSelectorModel); ok {
		return m.SelectedTrack(), nil
	}
	return -1, nil
}
