package tui

import (
	"strings"

	"github.com/muesli/termenv"
)

const (
	alertColor  = "#ef4444"
	noticeColor = "#a3a3a3"
)

// NewSystemRenderer styles system messages. Budget alerts and stop notices are
// bold red; everything else is faint.
func NewSystemRenderer(p termenv.Profile) func(string) (string, error) {
	return func(msg string) (string, error) {
		if p == termenv.Ascii {
			return msg, nil
		}
		s := termenv.String(msg)
		if isAlert(msg) {
			return s.Foreground(p.Color(alertColor)).Bold().String(), nil
		}
		return s.Foreground(p.Color(noticeColor)).Faint().String(), nil
	}
}

func isAlert(msg string) bool {
	return strings.HasPrefix(msg, "Budget alert") || strings.HasPrefix(msg, "Planning stopped")
}
