package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halfdome/swfkit/pkg/pipeline"
	"github.com/halfdome/swfkit/pkg/swf"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// characterEntry is one selectable row in the picker.
type characterEntry struct {
	ID   swf.CharacterID
	Kind string
	Name string
}

// CharacterListModel is the bubbletea model for interactive character
// selection. Space toggles, enter confirms.
type CharacterListModel struct {
	Entries []characterEntry
	Cursor  int
	Checked map[int]bool
	Done    bool
	Height  int
	Offset  int
}

// NewCharacterListModel creates a new character list model.
func NewCharacterListModel(entries []characterEntry) CharacterListModel {
	return CharacterListModel{
		Entries: entries,
		Checked: make(map[int]bool),
		Height:  15,
	}
}

func (m CharacterListModel) Init() tea.Cmd {
	return nil
}

func (m CharacterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "enter":
			if len(m.Selected()) == 0 {
				m.Checked[m.Cursor] = true
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Selected returns the ids of the checked entries in list order.
func (m CharacterListModel) Selected() []uint16 {
	var ids []int
	for i, on := range m.Checked {
		if on {
			ids = append(ids, i)
		}
	}
	sort.Ints(ids)
	out := make([]uint16, len(ids))
	for i, idx := range ids {
		out[i] = uint16(m.Entries[idx].ID)
	}
	return out
}

func (m CharacterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Characters"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if m.Checked[i] {
			check = "[x]"
		}

		name := e.Name
		if name == "" {
			name = "—"
		}
		line := fmt.Sprintf("%s%s %4s  %-10s  %s", cursor, check, strconv.Itoa(int(e.ID)), e.Kind, name)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Checked[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// pickCharacters parses the input and runs the interactive picker.
func pickCharacters(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) ([]uint16, error) {
	doc, err := runner.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}

	var entries []characterEntry
	for _, id := range doc.CharacterIDs() {
		def, ok := doc.Character(id)
		if !ok {
			continue
		}
		e := characterEntry{ID: id, Kind: def.Kind()}
		if name, ok := doc.ExportName(id); ok {
			e.Name = name
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no characters defined")
	}

	model := NewCharacterListModel(entries)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(CharacterListModel)
	if !ok || !m.Done {
		return nil, nil
	}
	return m.Selected(), nil
}
