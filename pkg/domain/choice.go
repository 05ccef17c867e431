package domain

import "strings"

// ParseChoice reads the answer given after an itinerary is shown.
// Only refine, update and quit are understood; anything else is ErrUnknownChoice.
func ParseChoice(input string) (Choice, error) {
	text := strings.TrimSpace(input)
	word, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	switch ChoiceKind(strings.ToLower(strings.TrimSuffix(word, ":"))) {
	case ChoiceRefine:
		return Choice{Kind: ChoiceRefine, Args: rest}, nil
	case ChoiceUpdate:
		return Choice{Kind: ChoiceUpdate, Args: rest}, nil
	case ChoiceQuit:
		if rest != "" {
			return Choice{}, ErrUnknownChoice
		}
		return Choice{Kind: ChoiceQuit}, nil
	}
	return Choice{}, ErrUnknownChoice
}
