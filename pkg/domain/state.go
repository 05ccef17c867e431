package domain

import (
	"slices"
	"time"
)

// ExecutionStatus defines whether the pipeline can keep running on its own.
type ExecutionStatus string

const (
	StatusActive          ExecutionStatus = "active"
	StatusWaitingForInput ExecutionStatus = "waiting_for_input"
	StatusTerminated      ExecutionStatus = "terminated"
)

// InputKind names what a waiting session expects next.
type InputKind string

const (
	InputFields      InputKind = "fields"
	InputApproval    InputKind = "approval"
	InputBudgetAlert InputKind = "budget_alert"
	InputNextStep    InputKind = "next_step"
)

// BudgetDecision is the user's answer to a failed budget check.
type BudgetDecision string

const (
	BudgetProceed BudgetDecision = "proceed"
	BudgetAdjust  BudgetDecision = "adjust"
)

// HandoffKind classifies an entry of the trail.
type HandoffKind string

const (
	HandoffRequest    HandoffKind = "request"
	HandoffShortlist  HandoffKind = "shortlist"
	HandoffApproval   HandoffKind = "approval"
	HandoffRejection  HandoffKind = "rejection"
	HandoffLogistics  HandoffKind = "logistics"
	HandoffAudit      HandoffKind = "audit"
	HandoffBudget     HandoffKind = "budget_decision"
	HandoffItinerary  HandoffKind = "itinerary"
	HandoffRefinement HandoffKind = "refinement"
	HandoffUpdate     HandoffKind = "update"
	HandoffNotice     HandoffKind = "notice"
	HandoffTerminated HandoffKind = "terminated"
)

// Handoff is one append-only record of context passed between stages.
type Handoff struct {
	Seq     int         `json:"seq"`
	Stage   Stage       `json:"stage"`
	Kind    HandoffKind `json:"kind"`
	Summary string      `json:"summary"`
	At      time.Time   `json:"at"`
}

// SessionState is the aggregate carried through the pipeline.
// Only the pipeline controller writes to it.
type SessionState struct {
	SessionID string          `json:"session_id"`
	Stage     Stage           `json:"stage"`
	Status    ExecutionStatus `json:"status"`
	Pending   InputKind       `json:"pending,omitempty"`

	Request   TripRequest `json:"request"`
	Questions []string    `json:"questions,omitempty"`

	Shortlist *Shortlist `json:"shortlist,omitempty"`
	// Feedback holds every rejection reason in the order it was given.
	Feedback []string `json:"feedback,omitempty"`

	Logistics      *LogisticsPlan `json:"logistics,omitempty"`
	Audit          *AuditReport   `json:"audit,omitempty"`
	BudgetDecision BudgetDecision `json:"budget_decision,omitempty"`

	Itinerary   *Itinerary `json:"itinerary,omitempty"`
	Refinements []string   `json:"refinements,omitempty"`

	Trail   []Handoff `json:"trail,omitempty"`
	History []Stage   `json:"history,omitempty"`

	// Notice is a one-shot message for the next render, such as "no candidates found".
	Notice    string    `json:"notice,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted snapshot when an encrypting store wraps the backend.
	// Live states never carry it.
	Sealed string `json:"sealed,omitempty"`
}

// NewSessionState creates a clean session waiting at the field-collection stage.
func NewSessionState(id string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: id,
		Stage:     StageCollectingFields,
		Status:    StatusActive,
		History:   []Stage{StageCollectingFields},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminated reports whether the session has reached its sink state.
func (s *SessionState) Terminated() bool {
	return s.Status == StatusTerminated
}

// Waiting reports whether the session is suspended for the given input kind.
func (s *SessionState) Waiting(kind InputKind) bool {
	return s.Status == StatusWaitingForInput && s.Pending == kind
}

// Clone returns a deep copy of the state.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Request = s.Request.Clone()
	c.Questions = slices.Clone(s.Questions)
	c.Feedback = slices.Clone(s.Feedback)
	c.Refinements = slices.Clone(s.Refinements)
	c.Trail = slices.Clone(s.Trail)
	c.History = slices.Clone(s.History)
	if s.Shortlist != nil {
		sl := s.Shortlist.Clone()
		c.Shortlist = &sl
	}
	if s.Logistics != nil {
		lp := s.Logistics.Clone()
		c.Logistics = &lp
	}
	if s.Audit != nil {
		ar := s.Audit.Clone()
		c.Audit = &ar
	}
	if s.Itinerary != nil {
		it := s.Itinerary.Clone()
		c.Itinerary = &it
	}
	return &c
}

// LastHandoff returns the most recent trail entry, if any.
func (s *SessionState) LastHandoff() (Handoff, bool) {
	if len(s.Trail) == 0 {
		return Handoff{}, false
	}
	return s.Trail[len(s.Trail)-1], true
}
