package svgview_test

import (
	"testing"

	"github.com/esteban-rocha/svgview"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := svgview.DefaultTheme()

	assert.Equal(t, 5, theme.Title)
	assert.Equal(t, 4, theme.Active)
	assert.Equal(t, 3, theme.Pending)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 2, theme.Success)
	assert.Equal(t, 8, theme.Muted)
}
