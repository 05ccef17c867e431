package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

var (
	// DefaultMaxInputSize caps a single answer at 4KB. The CLI replaces it with the configured limit.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize for every channel.
	EnvMaxInputSize = "VOYAGE_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput prepares a raw answer (trip details, approval, feedback or a choice)
// for the engine. Oversized and non UTF-8 answers are rejected, never truncated.
// Terminal escape sequences are removed whole, so a pasted "\x1b[31m100000 INR" reads
// as "100000 INR" and not as an amount of 31. Other control characters except
// newline, tab and carriage return are dropped.
func SanitizeInput(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.ContainsRune(input, '\x1b') {
		input = ansi.Strip(input)
	}
	if !strings.ContainsFunc(input, unsafeControl) {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
