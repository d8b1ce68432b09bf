package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// maxSummaryWidth bounds the event column in cells.
const maxSummaryWidth = 40

// =============================================================================
// TraceModel - Interactive layout trace
// =============================================================================

// TraceModel is the bubbletea model behind 'lifeline inspect'. Each row is
// one event with the accumulator state the layout reached after it.
type TraceModel struct {
	Title  string
	Events []sequence.Event
	Steps  []layout.Step
	Cursor int
	Height int
	Offset int
}

// NewTraceModel creates a trace model for a diagram and its traced layout.
func NewTraceModel(d *sequence.Diagram, l layout.Layout) TraceModel {
	return TraceModel{
		Title:  l.Extent.Title,
		Events: d.Events,
		Steps:  l.Trace,
		Height: 15,
	}
}

func (m TraceModel) Init() tea.Cmd {
	return nil
}

func (m TraceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Steps))
		case "end", "G":
			m.move(len(m.Steps))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped, and scrolls to keep it visible.
func (m *TraceModel) move(delta int) {
	if len(m.Steps) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Steps)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TraceModel) View() string {
	var b strings.Builder

	title := "Layout trace"
	if m.Title != "" {
		title += ": " + m.Title
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("  no trace recorded"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Steps))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		s := m.Steps[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		summary := ""
		if s.Index < len(m.Events) {
			summary = describeEvent(m.Events[s.Index])
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(s.Index),
			s.Kind,
			runewidth.Truncate(summary, maxSummaryWidth, "…"),
			fmt.Sprintf("%.1f", s.Cursor),
			fmt.Sprint(s.Sections),
			fmt.Sprint(s.Activations),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Event", "Detail", "Cursor", "Sections", "Active").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 4 {
				return listNormalStyle
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString("  " + StyleHighlight.Render(fmt.Sprintf("[%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

// describeEvent renders an event as a short human-readable line.
func describeEvent(ev sequence.Event) string {
	switch e := ev.(type) {
	case sequence.AddActor:
		if e.Name != "" && e.Name != e.ID {
			return fmt.Sprintf("%s (%s)", e.ID, e.Name)
		}
		return e.ID
	case sequence.Message:
		return fmt.Sprintf("%s → %s: %s", e.From, e.To, oneLine(e.Text))
	case sequence.ActivateStart:
		return "+" + e.Actor
	case sequence.ActivateEnd:
		return "-" + e.Actor
	case sequence.Note:
		return fmt.Sprintf("%s %s: %s", e.Placement, strings.Join(e.Actors, ","), oneLine(e.Text))
	case sequence.SectionStart:
		return fmt.Sprintf("%s [%s]", e.Kind, e.Label)
	case sequence.SectionDivider:
		return fmt.Sprintf("%s [%s]", e.Kind, e.Label)
	case sequence.SectionEnd:
		return "end " + string(e.Kind)
	case sequence.SetTitle:
		return oneLine(e.Text)
	}
	return ev.Type()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
