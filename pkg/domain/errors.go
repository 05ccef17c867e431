package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTerminated is returned when input is sent to a terminated session.
	ErrTerminated = errors.New("session terminated")

	// ErrInvalidTransition is returned when a stage move is not in the transition table.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNotWaiting is returned when input does not match what the session is waiting for.
	ErrNotWaiting = errors.New("session is not waiting for this input")

	// ErrAmbiguousDecision is returned when an approval answer is neither approve nor reject.
	ErrAmbiguousDecision = errors.New("ambiguous approval decision")

	// ErrUnknownChoice is returned for anything other than refine, update or quit.
	ErrUnknownChoice = errors.New("unknown choice: expected refine, update or quit")

	// ErrUnknownBudgetDecision is returned when a budget alert answer is neither proceed nor adjust.
	ErrUnknownBudgetDecision = errors.New("unknown budget decision: expected proceed or adjust")
)

// MissingFieldError lists the required fields a request still lacks.
type MissingFieldError struct {
	Fields []Field
}

func (e *MissingFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "missing fields: " + strings.Join(names, ", ")
}

// DataNotFoundError reports that a provider had no data for a query.
type DataNotFoundError struct {
	Kind   ItemKind
	Detail string
}

func (e *DataNotFoundError) Error() string {
	if e.Kind == "" {
		return "data not found: " + e.Detail
	}
	return fmt.Sprintf("data not found (%s): %s", e.Kind, e.Detail)
}

// CollaboratorUnavailableError reports a hard failure of an external collaborator.
// It terminates the session.
type CollaboratorUnavailableError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("collaborator %s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err comes from an answer that could not be understood.
// The session is unchanged and the same question can be asked again.
func IsInputError(err error) bool {
	return errors.Is(err, ErrAmbiguousDecision) ||
		errors.Is(err, ErrUnknownChoice) ||
		errors.Is(err, ErrUnknownBudgetDecision)
}
