package prompt

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danieljhkim/shelf/internal/merge"
)

// Styles colors a rendered diff.
type Styles struct {
	Title   lipgloss.Style
	Current lipgloss.Style
	Shelved lipgloss.Style
	Context lipgloss.Style
	Help    lipgloss.Style
}

// DefaultStyles returns the viewer's terminal colors.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		Current: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Shelved: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		Context: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles renders without any styling.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Current: plain, Shelved: plain, Context: plain, Help: plain}
}

// RenderDiff renders segments one line per row: "- " for lines only in the
// workspace, "+ " for lines only in the shelf, two spaces for shared lines.
func RenderDiff(segments []merge.Segment, st Styles) string {
	if len(segments) == 0 {
		return st.Context.Render("No differences.")
	}

	var rows []string
	for _, seg := range segments {
		prefix, style := "  ", st.Context
		switch seg.Op {
		case merge.OpRemoved:
			prefix, style = "- ", st.Current
		case merge.OpAdded:
			prefix, style = "+ ", st.Shelved
		}
		for _, line := range splitLines(seg.Text) {
			rows = append(rows, style.Render(prefix+line))
		}
	}
	return strings.Join(rows, "\n")
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

// DiffViewerModel is a scrollable view of a rendered diff.
type DiffViewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	styles   Styles
}

// NewDiffViewerModel creates a viewer for already rendered content.
func NewDiffViewerModel(title, content string, styles Styles) DiffViewerModel {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle()

	return DiffViewerModel{
		title:    title,
		content:  content,
		viewport: vp,
		styles:   styles,
	}
}

func (m DiffViewerModel) Init() tea.Cmd {
	return nil
}

func (m DiffViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 4 // title + help + borders
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-headerHeight)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - headerHeight
		}
		m.viewport.SetContent(m.content)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "d", "ctrl+d":
			m.viewport.HalfViewDown()
		case "u", "ctrl+u":
			m.viewport.HalfViewUp()
		case "f", "pgdn":
			m.viewport.ViewDown()
		case "b", "pgup":
			m.viewport.ViewUp()
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DiffViewerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.title),
		m.viewport.View(),
		m.styles.Help.Render("j/k: line by line | d/u: half page | f/b: full page | g/G: top/bottom | q: back"),
	)
}

// ShowDiff runs the viewer full screen until the user leaves it.
func ShowDiff(ctx context.Context, title, content string) error {
	m := NewDiffViewerModel(title, content, DefaultStyles())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
