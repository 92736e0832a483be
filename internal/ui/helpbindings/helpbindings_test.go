package helpbindings

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tubeplay/internal/keymap"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHelpBindings_Close(t *testing.T) {
	for _, k := range []string{"esc", "q", "?"} {
		t.Run(k, func(t *testing.T) {
			m := New()

			_, cmd := m.Update(key(k))

			if cmd == nil {
				t.Fatal("expected close command")
			}
			if _, ok := cmd().(CloseMsg); !ok {
				t.Errorf("cmd() = %T, want CloseMsg", cmd())
			}
		})
	}
}

func TestHelpBindings_Scroll(t *testing.T) {
	m := New()
	m.SetSize(80, 14)

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("j"))
	if m.offset != 2 {
		t.Errorf("offset = %d, want 2", m.offset)
	}

	for range 100 {
		m, _ = m.Update(key("j"))
	}
	if m.offset != m.maxOffset() {
		t.Errorf("offset = %d, want clamp at %d", m.offset, m.maxOffset())
	}

	m, _ = m.Update(key("k"))
	if m.offset != m.maxOffset()-1 {
		t.Errorf("offset after k = %d, want %d", m.offset, m.maxOffset()-1)
	}
}

func TestHelpBindings_ListsEveryContext(t *testing.T) {
	out := ansi.Strip(New().View())

	for _, label := range categoryLabels {
		if !strings.Contains(out, label) {
			t.Errorf("view missing category %q", label)
		}
	}
	for _, b := range keymap.All {
		if !strings.Contains(out, b.Description) {
			t.Errorf("view missing binding %q", b.Description)
		}
	}
}

func TestKeyLabel_NamesSpaceOnce(t *testing.T) {
	got := keyLabel(keymap.Binding{Keys: []string{" ", "space"}})
	if got != "space" {
		t.Errorf("keyLabel = %q, want %q", got, "space")
	}
}
