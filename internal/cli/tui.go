package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	detailPathStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// LinkListModel - Interactive link browser
// =============================================================================

// LinkListModel is the bubbletea model behind the inspect command. It lists
// every link with its routing status; enter toggles the route details and s
// picks a link to highlight.
type LinkListModel struct {
	Title    string
	Rows     []linkRow
	Cursor   int
	Offset   int
	Height   int
	Details  bool
	Selected *linkRow
}

// NewLinkListModel creates a link browser over rows.
func NewLinkListModel(title string, rows []linkRow) LinkListModel {
	return LinkListModel{Title: title, Rows: rows, Height: 15}
}

func (m LinkListModel) Init() tea.Cmd {
	return nil
}

func (m LinkListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Details = !m.Details
		case "s":
			if len(m.Rows) == 0 {
				return m, nil
			}
			row := m.Rows[m.Cursor]
			m.Selected = &row
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m LinkListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s select  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no links"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(routeTable(m.Rows[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	b.WriteString("\n")

	if m.Details {
		b.WriteString("\n")
		b.WriteString(m.details(m.Rows[m.Cursor]))
	}
	return b.String()
}

func (m LinkListModel) details(r linkRow) string {
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(detailKeyStyle.Render(k) + " " + v + "\n")
	}
	line("link", StyleHighlight.Render(r.ID))
	line("from", r.From+" "+iconArrow+" "+r.To)
	line("status", statusStyle(r.Status).Render(r.Status))
	if r.Status == statusSkipped {
		return b.String()
	}
	pts := make([]string, len(r.Points))
	for i, p := range r.Points {
		pts[i] = p.String()
	}
	line("points", strings.Join(pts, " "))
	line("path", detailPathStyle.Render(r.Path))
	return b.String()
}
