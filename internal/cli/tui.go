package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

var detailBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

var recordHeaders = []string{"Archive", "Camera", "Rev", "Version", "Lang", "Category", "Encoding"}

// recordRow returns the table cells for one scan item. Failed items carry
// the error code in place of a camera.
func recordRow(it scanItem) []string {
	if it.err != nil {
		return []string{"—", string(errors.GetCode(it.err)), "", "", "", "", ""}
	}
	sw := it.res.Software
	row := []string{it.res.Archive, "—", "", sw.Version, "", "", ""}
	if sw.Camera != nil {
		row[1], row[2] = sw.Camera.Platform, sw.Camera.Revision
	}
	if sw.Product != nil {
		row[4] = sw.Product.Language
	}
	if sw.Category != nil {
		row[5] = sw.Category.Name
	}
	if sw.Encoding != nil {
		row[6] = encodingLabel(sw.Encoding)
	}
	return row
}

func encodingLabel(e *software.Encoding) string {
	if e.Data == nil {
		return e.Name
	}
	return fmt.Sprintf("%s/%d", e.Name, *e.Data)
}

// recordTable renders all items as a static table.
func recordTable(items []scanItem) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = recordRow(it)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(recordHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < len(items) && items[row].err != nil {
				return StyleError
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// =============================================================================
// recordListModel - Interactive record browser
// =============================================================================

// recordListModel is the bubbletea model for browsing scan results.
// Enter toggles a detail view of the selected record.
type recordListModel struct {
	items   []scanItem
	Cursor  int
	Height  int
	Offset  int
	Details bool
}

// newRecordListModel creates a new record list model.
func newRecordListModel(items []scanItem) recordListModel {
	return recordListModel{items: items, Height: 15}
}

func (m recordListModel) Init() tea.Cmd {
	return nil
}

func (m recordListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Details {
				m.Details = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.items) > 0 {
				m.Details = !m.Details
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m recordListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scan Results"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(listDimStyle.Render("  no records"))
		b.WriteString("\n")
		return b.String()
	}

	if m.Details {
		b.WriteString(detailBoxStyle.Render(m.detail(m.items[m.Cursor])))
	} else {
		b.WriteString(m.list())
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.items))))

	return b.String()
}

func (m recordListModel) list() string {
	end := min(m.Offset+m.Height, len(m.items))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, recordRow(m.items[i])...))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, recordHeaders...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.items[idx].err != nil {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				if m.items[idx].err == nil {
					base = base.Foreground(colorCyan)
				}
				return base.Bold(true)
			}
			return base
		}).
		Render()
}

func (m recordListModel) detail(it scanItem) string {
	if it.err != nil {
		return StyleError.Render(it.err.Error())
	}
	data, err := json.MarshalIndent(it.res.Software, "", "  ")
	if err != nil {
		return StyleError.Render(err.Error())
	}
	location := strings.Join(append(append([]string{}, it.res.Chain...), it.res.Entry), " › ")
	return StyleDim.Render(location) + "\n\n" + string(data)
}

// runBrowser shows items in the interactive record browser.
func runBrowser(items []scanItem) error {
	_, err := tea.NewProgram(newRecordListModel(items), tea.WithAltScreen()).Run()
	return err
}
