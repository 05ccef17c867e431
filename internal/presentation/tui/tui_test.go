package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/voyage/internal/presentation/tui"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(glamour.WithStandardStyle("notty"))
	require.NoError(t, err)

	out, err := render("## Itinerary (revision 1)\n\n- Day 1: Tsukiji Outer Market\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Itinerary (revision 1)")
	assert.Contains(t, out, "Tsukiji Outer Market")
}

func TestSystemRenderer(t *testing.T) {
	alert := "Budget alert: the verified cost 250000 INR exceeds your budget of 200000 INR by 50000 INR."

	plain, err := tui.NewSystemRenderer(termenv.Ascii)(alert)
	require.NoError(t, err)
	assert.Equal(t, alert, plain)

	colored, err := tui.NewSystemRenderer(termenv.TrueColor)(alert)
	require.NoError(t, err)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, alert)

	notice, err := tui.NewSystemRenderer(termenv.TrueColor)("Session saved.")
	require.NoError(t, err)
	assert.Contains(t, notice, "\x1b[")
	assert.NotContains(t, notice, "239;68;68", "notices do not use the alert color")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), `\_/ \___/`)
	assert.NotContains(t, buf.String(), "\x1b[")
}
