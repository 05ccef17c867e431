package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter         EventType = "stage_enter"
	EventStageLeave         EventType = "stage_leave"
	EventCollaboratorCall   EventType = "collaborator_call"
	EventCollaboratorReturn EventType = "collaborator_return"
	EventBudgetAlert        EventType = "budget_alert"
)

// Collaborator outcomes reported on return events.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StageEvent represents entry into or exit from a stage.
type StageEvent struct {
	EventBase
	Stage Stage `json:"stage"`
}

// CollaboratorEvent represents a call to an external collaborator.
type CollaboratorEvent struct {
	EventBase
	Stage        Stage         `json:"stage"`
	Collaborator string        `json:"collaborator"`
	Duration     time.Duration `json:"duration,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	Err          string        `json:"error,omitempty"`
}

// BudgetAlertEvent is emitted when a plan exceeds the trip total.
type BudgetAlertEvent struct {
	EventBase
	Budget BudgetCheck `json:"budget"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageEnter         func(context.Context, *StageEvent)
	OnStageLeave         func(context.Context, *StageEvent)
	OnCollaboratorCall   func(context.Context, *CollaboratorEvent)
	OnCollaboratorReturn func(context.Context, *CollaboratorEvent)
	OnBudgetAlert        func(context.Context, *BudgetAlertEvent)
}
