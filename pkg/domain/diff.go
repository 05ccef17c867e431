package domain

// SessionDiff represents the changes between two session snapshots.
// It is serialized to JSON for partial updates on live clients.
type SessionDiff struct {
	SessionID string           `json:"session_id"`
	Stage     *Stage           `json:"stage,omitempty"`
	Status    *ExecutionStatus `json:"status,omitempty"`
	Pending   *InputKind       `json:"pending,omitempty"`

	// Trail contains only the handoffs appended since the old snapshot.
	Trail []Handoff `json:"trail,omitempty"`

	// Artifacts names the artifacts that were produced, replaced or discarded.
	Artifacts []string `json:"artifacts,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *SessionState) *SessionDiff {
	if newState == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Stage != newState.Stage {
		stage := newState.Stage
		diff.Stage = &stage
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	if oldState == nil || oldState.Pending != newState.Pending {
		pending := newState.Pending
		diff.Pending = &pending
	}

	diff.Trail = diffTrail(oldState, newState)
	diff.Artifacts = diffArtifacts(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffTrail relies on the trail being append-only.
func diffTrail(old, new *SessionState) []Handoff {
	if old == nil {
		if len(new.Trail) == 0 {
			return nil
		}
		return append([]Handoff(nil), new.Trail...)
	}
	if len(new.Trail) > len(old.Trail) {
		return append([]Handoff(nil), new.Trail[len(old.Trail):]...)
	}
	return nil
}

func diffArtifacts(old, new *SessionState) []string {
	if old == nil {
		old = &SessionState{}
	}
	var out []string
	if changed(old.Shortlist, new.Shortlist, func(a, b *Shortlist) bool {
		return a.Round == b.Round && a.ApprovedAt.Equal(b.ApprovedAt) && len(a.Candidates) == len(b.Candidates)
	}) {
		out = append(out, "shortlist")
	}
	if changed(old.Logistics, new.Logistics, func(a, b *LogisticsPlan) bool {
		return a.SourcedAt.Equal(b.SourcedAt) && len(a.Items) == len(b.Items)
	}) {
		out = append(out, "logistics")
	}
	if changed(old.Audit, new.Audit, func(a, b *AuditReport) bool {
		return a.AuditedAt.Equal(b.AuditedAt) && a.Passed == b.Passed
	}) {
		out = append(out, "audit")
	}
	if changed(old.Itinerary, new.Itinerary, func(a, b *Itinerary) bool {
		return a.Revision == b.Revision && a.ComposedAt.Equal(b.ComposedAt)
	}) {
		out = append(out, "itinerary")
	}
	return out
}

func changed[T any](a, b *T, same func(a, b *T) bool) bool {
	if a == nil || b == nil {
		return a != b
	}
	return !same(a, b)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.Stage == nil &&
		d.Status == nil &&
		d.Pending == nil &&
		len(d.Trail) == 0 &&
		len(d.Artifacts) == 0
}
