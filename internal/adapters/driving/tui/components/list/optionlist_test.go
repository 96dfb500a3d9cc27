package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
)

func sampleOptions() []string {
	return []string{"Mitochondria", "Ribosome", "Nucleus", "Golgi"}
}

func TestNewOptionList(t *testing.T) {
	list := NewOptionList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 0, list.Count())
	assert.False(t, list.Revealed())
}

func TestNewOptionList_NilStyles(t *testing.T) {
	list := NewOptionList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestOptionList_Init(t *testing.T) {
	assert.Nil(t, NewOptionList(nil).Init())
}

func TestOptionList_SetOptions(t *testing.T) {
	list := NewOptionList(nil)
	list.SetSelected(2)
	list.Reveal(1, 2)

	list.SetOptions(sampleOptions())

	assert.Equal(t, 4, list.Count())
	assert.Equal(t, sampleOptions(), list.Options())
	assert.Equal(t, 0, list.Selected())
	assert.False(t, list.Revealed())
}

func TestOptionList_Navigation(t *testing.T) {
	list := NewOptionList(nil)
	list.SetOptions(sampleOptions())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected(), "stays at top")

	list.MoveDown()
	list.MoveDown()
	list.MoveDown()
	list.MoveDown()
	assert.Equal(t, 3, list.Selected(), "stays at bottom")

	list.SetSelected(10)
	assert.Equal(t, 3, list.Selected(), "out of range ignored")
	list.SetSelected(-1)
	assert.Equal(t, 3, list.Selected())
}

func TestOptionList_Update_Keys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, 1},
		{"j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 1},
		{"up arrow at top", tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"other key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewOptionList(nil)
			list.SetOptions(sampleOptions())

			updated, cmd := list.Update(tt.msg)

			assert.Nil(t, cmd)
			assert.Equal(t, tt.want, updated.Selected())
		})
	}
}

func TestOptionList_Update_IgnoredAfterReveal(t *testing.T) {
	list := NewOptionList(nil)
	list.SetOptions(sampleOptions())
	list.Reveal(0, 0)

	list.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, 0, list.Selected())
}

func TestOptionList_View(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, NewOptionList(nil).View(), "No options")
	})

	t.Run("numbers every option", func(t *testing.T) {
		list := NewOptionList(nil)
		list.SetOptions(sampleOptions())

		view := list.View()

		assert.Contains(t, view, "1. Mitochondria")
		assert.Contains(t, view, "4. Golgi")
		assert.Contains(t, view, "> ")
	})

	t.Run("revealed marks correct and chosen", func(t *testing.T) {
		list := NewOptionList(nil)
		list.SetOptions(sampleOptions())
		list.Reveal(0, 2)

		view := list.View()

		assert.Contains(t, view, "✓")
		assert.Contains(t, view, "✗")
		assert.NotContains(t, view, "> ")
	})

	t.Run("truncates long options", func(t *testing.T) {
		list := NewOptionList(nil)
		list.SetWidth(20)
		list.SetOptions([]string{strings.Repeat("a", 50)})

		assert.Contains(t, list.View(), "...")
		assert.Equal(t, 20, list.Width())
	})
}
