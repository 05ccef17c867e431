package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` __   __                              `, "#38bdf8"},
	{` \ \ / /___  _  _  __ _  __ _  ___   `, "#22d3ee"},
	{`  \ V // _ \| || |/ _' |/ _' |/ -_)  `, "#2dd4bf"},
	{`   \_/ \___/ \_, |\__,_|\__, |\___|  `, "#34d399"},
	{`             |__/       |___/        `, "#4ade80"},
}

// PrintBanner writes the voyage banner using the given color profile.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
