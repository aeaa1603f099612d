package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.BarStart))
	assert.NotEmpty(t, string(theme.BarEnd))
	assert.NotEqual(t, theme.BarStart, theme.BarEnd)
	assert.NotEqual(t, theme.Success, theme.Error)
}

func TestNewStyles(t *testing.T) {
	t.Run("nil theme uses default", func(t *testing.T) {
		s := NewStyles(nil)
		require.NotNil(t, s)
		assert.Equal(t, DefaultTheme(), s.Theme())
	})

	t.Run("custom theme is kept", func(t *testing.T) {
		theme := DefaultTheme()
		theme.Primary = "#000000"
		s := NewStyles(theme)
		assert.Same(t, theme, s.Theme())
	})

	t.Run("styles render text", func(t *testing.T) {
		s := DefaultStyles()
		assert.Contains(t, s.Title.Render("Syncing"), "Syncing")
		assert.Contains(t, s.Error.Render("failed"), "failed")
	})
}
