package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowtower/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(bright)
	listDimStyle      = lipgloss.NewStyle().Foreground(faint)
	listBranchStyle   = lipgloss.NewStyle().Foreground(muted).Italic(true)
	listLoopStyle     = lipgloss.NewStyle().Foreground(amber)
)

// =============================================================================
// TreeModel - Interactive tree browser
// =============================================================================

// treeRow is one visible line of the browser.
type treeRow struct {
	node  *graph.TreeNode
	depth int
}

// TreeModel is the bubbletea model for browsing a pipeline tree. Entries
// with children can be folded.
type TreeModel struct {
	Roots     []*graph.TreeNode
	Collapsed map[*graph.TreeNode]bool
	Cursor    int
	Offset    int
	Height    int

	rows []treeRow
}

// NewTreeModel creates a browser with every entry unfolded.
func NewTreeModel(roots []*graph.TreeNode) TreeModel {
	m := TreeModel{
		Roots:     roots,
		Collapsed: make(map[*graph.TreeNode]bool),
		Height:    15,
	}
	m.refresh()
	return m
}

// refresh recomputes the visible rows and keeps the cursor in range.
func (m *TreeModel) refresh() {
	rows := make([]treeRow, 0, len(m.rows))
	graph.Walk(m.Roots, func(n *graph.TreeNode, depth int) bool {
		rows = append(rows, treeRow{node: n, depth: depth})
		return !m.Collapsed[n]
	})
	m.rows = rows
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the entry under the cursor, or nil for an empty tree.
func (m TreeModel) Selected() *graph.TreeNode {
	if m.Cursor < len(m.rows) {
		return m.rows[m.Cursor].node
	}
	return nil
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.rows)-1, 0)
		case "enter", " ":
			if n := m.Selected(); n != nil && len(n.Children) > 0 {
				m.Collapsed[n] = !m.Collapsed[n]
				m.refresh()
			}
		case "left", "h":
			if n := m.Selected(); n != nil && len(n.Children) > 0 && !m.Collapsed[n] {
				m.Collapsed[n] = true
				m.refresh()
			} else {
				m.Cursor = m.parent()
			}
		case "right", "l":
			if n := m.Selected(); n != nil && m.Collapsed[n] {
				delete(m.Collapsed, n)
				m.refresh()
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.scroll()
	}
	return m, nil
}

// parent returns the row index of the entry enclosing the cursor.
func (m TreeModel) parent() int {
	if m.Cursor >= len(m.rows) {
		return m.Cursor
	}
	depth := m.rows[m.Cursor].depth
	for i := m.Cursor - 1; i >= 0; i-- {
		if m.rows[i].depth < depth {
			return i
		}
	}
	return m.Cursor
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Pipeline Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  ←/→ collapse/expand  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	b.WriteString("\n\n")

	if n := m.Selected(); n != nil {
		b.WriteString(detailTable(n))
	}
	return b.String()
}

func (m TreeModel) renderRow(i int) string {
	row := m.rows[i]
	n := row.node

	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	fold := "  "
	if len(n.Children) > 0 {
		fold = "▾ "
		if m.Collapsed[n] {
			fold = "▸ "
		}
	}
	title := n.Title
	if title == "" {
		title = n.ID
	}
	line := cursor + strings.Repeat("  ", row.depth) + fold + title

	switch {
	case i == m.Cursor:
		line = listSelectedStyle.Render(line)
	case n.IsSynthetic():
		line = listBranchStyle.Render(line)
	default:
		line = listNormalStyle.Render(line)
	}
	if n.IsLoop {
		line += " " + listLoopStyle.Render("↺ "+n.CallbackName)
	}
	if n.Type != "" {
		line += "  " + listDimStyle.Render(n.Type)
	}
	return line
}

// detailTable renders the fields of one entry.
func detailTable(n *graph.TreeNode) string {
	rows := [][]string{{"id", n.ID}, {"title", n.Title}}
	if n.Type != "" {
		rows = append(rows, []string{"type", n.Type})
	}
	if n.ConditionType != "" {
		rows = append(rows, []string{"branch", n.ConditionType})
	}
	if n.Outgoing != "" {
		rows = append(rows, []string{"flow", n.Outgoing})
	}
	if n.GatewayType != "" {
		rows = append(rows, []string{"gateway", n.GatewayType})
	}
	if cd := n.CallbackData; cd != nil {
		if cd.Value != "" {
			rows = append(rows, []string{"condition", cd.Value})
		}
		if n.IsLoop {
			rows = append(rows, []string{"loops to", cd.ID})
		}
	}
	rows = append(rows, []string{"children", fmt.Sprint(len(n.Children))})

	keyStyle := lipgloss.NewStyle().Foreground(muted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle.PaddingRight(1)
			}
			return lipgloss.NewStyle().Foreground(bright)
		}).
		Render()
}
