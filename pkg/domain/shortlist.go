package domain

import (
	"slices"
	"strings"
	"time"
)

// Candidate is one activity or place proposed by discovery.
type Candidate struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// Shortlist is the candidate set submitted for human approval.
type Shortlist struct {
	Candidates []Candidate `json:"candidates"`
	Round      int         `json:"round"`
	ApprovedAt time.Time   `json:"approved_at,omitzero"`
}

// Frozen reports whether the shortlist was approved and can no longer change.
func (s Shortlist) Frozen() bool {
	return !s.ApprovedAt.IsZero()
}

// Empty reports whether discovery found nothing.
func (s Shortlist) Empty() bool {
	return len(s.Candidates) == 0
}

// Names returns the candidate names in order.
func (s Shortlist) Names() []string {
	names := make([]string, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		names = append(names, c.Name)
	}
	return names
}

// Clone returns a deep copy.
func (s Shortlist) Clone() Shortlist {
	out := s
	out.Candidates = slices.Clone(s.Candidates)
	for i := range out.Candidates {
		out.Candidates[i].Tags = slices.Clone(out.Candidates[i].Tags)
	}
	return out
}

// Verdict is the outcome of the approval gate.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

// ApprovalDecision is the user's response at the approval gate.
type ApprovalDecision struct {
	Verdict  Verdict `json:"verdict"`
	Feedback string  `json:"feedback,omitempty"`
}

// Approve returns an approving decision.
func Approve() ApprovalDecision {
	return ApprovalDecision{Verdict: VerdictApproved}
}

// Reject returns a rejecting decision carrying the given feedback.
func Reject(feedback string) ApprovalDecision {
	return ApprovalDecision{Verdict: VerdictRejected, Feedback: strings.TrimSpace(feedback)}
}

// ParseDecision reads an approval answer. Accepted forms are approve, approved, yes, y,
// reject, no, n and "reject: <feedback>". Anything else is ErrAmbiguousDecision.
func ParseDecision(input string) (ApprovalDecision, error) {
	text := strings.TrimSpace(input)
	word, rest, _ := strings.Cut(text, ":")
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "approve", "approved", "yes", "y":
		if strings.TrimSpace(rest) != "" {
			return ApprovalDecision{}, ErrAmbiguousDecision
		}
		return Approve(), nil
	case "reject", "rejected", "no", "n":
		return Reject(rest), nil
	}
	return ApprovalDecision{}, ErrAmbiguousDecision
}
