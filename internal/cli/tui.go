package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lineage/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// AttributePickerModel - Interactive trace focus selection
// =============================================================================

// TraceSelection is the node and attribute picked for a trace.
type TraceSelection struct {
	Node string
	Attr string
}

// AttributePickerModel is the bubbletea model for picking a trace focus: a
// filterable node table first, then the chosen node's attributes.
type AttributePickerModel struct {
	Search func(query string) []*graph.Node

	Query    string
	Nodes    []*graph.Node
	Node     *graph.Node // chosen node, nil while picking a node
	Cursor   int
	Offset   int
	Height   int
	Selected *TraceSelection
}

// NewAttributePickerModel creates a picker over the nodes returned by
// search.
func NewAttributePickerModel(search func(string) []*graph.Node) AttributePickerModel {
	return AttributePickerModel{
		Search: search,
		Nodes:  withAttributes(search("")),
		Height: 15,
	}
}

// withAttributes keeps the nodes that have something to trace.
func withAttributes(nodes []*graph.Node) []*graph.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if len(n.Attributes) > 0 {
			out = append(out, n)
		}
	}
	return out
}

func (m AttributePickerModel) Init() tea.Cmd {
	return nil
}

func (m AttributePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown:
			m.move(1)
		case tea.KeyEnter:
			return m.choose()
		case tea.KeyBackspace:
			if m.Node != nil {
				m.Node = nil
				m.Cursor, m.Offset = 0, 0
			} else if m.Query != "" {
				m.Query = m.Query[:len(m.Query)-1]
				m.filter()
			}
		case tea.KeyRunes:
			if m.Node == nil {
				m.Query += string(msg.Runes)
				m.filter()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m *AttributePickerModel) filter() {
	m.Nodes = withAttributes(m.Search(m.Query))
	m.Cursor, m.Offset = 0, 0
}

func (m *AttributePickerModel) items() int {
	if m.Node != nil {
		return len(m.Node.Attributes)
	}
	return len(m.Nodes)
}

func (m *AttributePickerModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= m.items() {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m AttributePickerModel) choose() (tea.Model, tea.Cmd) {
	if m.items() == 0 {
		return m, nil
	}
	if m.Node == nil {
		m.Node = m.Nodes[m.Cursor]
		m.Cursor, m.Offset = 0, 0
		return m, nil
	}
	m.Selected = &TraceSelection{Node: m.Node.ID, Attr: m.Node.Attributes[m.Cursor].Name}
	return m, tea.Quit
}

func (m AttributePickerModel) View() string {
	if m.Node != nil {
		return m.attributeView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Node"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("filter: ") + StyleValue.Render(m.Query))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.Label(), orDash(n.Layer), strconv.Itoa(len(n.Attributes)), strconv.Itoa(n.InDegree), strconv.Itoa(n.OutDegree)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Layer", "Attrs", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))
	return b.String()
}

func (m AttributePickerModel) attributeView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Attribute of " + m.Node.Label()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ trace  ⌫ back  esc quit"))
	b.WriteString("\n\n")

	for i, a := range m.Node.Attributes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		key := " "
		if a.IsPrimaryKey {
			key = "#"
		}
		line := fmt.Sprintf("%s%s %-25s  %s", cursor, key, a.Name, listDimStyle.Render(a.DataType))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
