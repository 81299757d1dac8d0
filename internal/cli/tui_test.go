package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halfdome/swfkit/pkg/swf"
)

func testEntries() []characterEntry {
	return []characterEntry{
		{ID: 1, Kind: "shape"},
		{ID: 2, Kind: "sprite", Name: "button_up"},
		{ID: 3, Kind: "bitmap"},
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m CharacterListModel, keys ...string) CharacterListModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(CharacterListModel)
	}
	return m
}

func TestCharacterListToggleAndConfirm(t *testing.T) {
	m := NewCharacterListModel(testEntries())

	m = update(m, " ", "j", "j", " ", "enter")

	if !m.Done {
		t.Error("enter should mark the model done")
	}
	got := m.Selected()
	want := []uint16{1, 3}
	if len(got) != len(want) {
		t.Fatalf("Selected() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Selected()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCharacterListEnterChecksCursorRow(t *testing.T) {
	m := NewCharacterListModel(testEntries())

	// Confirming with nothing checked selects the cursor row.
	m = update(m, "j", "enter")

	got := m.Selected()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Selected() = %v, want [2]", got)
	}
}

func TestCharacterListCursorBounds(t *testing.T) {
	m := NewCharacterListModel(testEntries())

	m = update(m, "k", "k")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}

	m = update(m, "j", "j", "j", "j")
	if m.Cursor != len(m.Entries)-1 {
		t.Errorf("cursor moved past the last row: %d", m.Cursor)
	}
}

func TestCharacterListQuitWithoutConfirm(t *testing.T) {
	m := NewCharacterListModel(testEntries())

	next, cmd := m.Update(keyMsg("q"))
	m = next.(CharacterListModel)

	if cmd == nil {
		t.Error("q should quit")
	}
	if m.Done {
		t.Error("quitting must not mark the model done")
	}
}

func TestCharacterListView(t *testing.T) {
	m := NewCharacterListModel(testEntries())
	m = update(m, " ")

	view := m.View()
	if !strings.Contains(view, "button_up") {
		t.Error("view should show export names")
	}
	if !strings.Contains(view, "[x]") {
		t.Error("view should show the checked row")
	}
	if !strings.Contains(view, "[1/3]") {
		t.Error("view should show the position footer")
	}
}

func TestCharacterListScrollOffset(t *testing.T) {
	entries := make([]characterEntry, 20)
	for i := range entries {
		entries[i] = characterEntry{ID: swf.CharacterID(i + 1), Kind: "shape"}
	}
	m := NewCharacterListModel(entries)
	m.Height = 5

	for i := 0; i < 10; i++ {
		m = update(m, "j")
	}
	if m.Cursor != 10 {
		t.Fatalf("cursor = %d, want 10", m.Cursor)
	}
	if m.Offset != m.Cursor-m.Height+1 {
		t.Errorf("offset = %d, cursor should stay visible", m.Offset)
	}
}
