package domain

import "slices"

// Stage identifies a step of the planning pipeline.
type Stage string

const (
	StageCollectingFields   Stage = "collecting_fields"
	StageAwaitingApproval   Stage = "awaiting_approval"
	StageSourcingLogistics  Stage = "sourcing_logistics"
	StageAuditing           Stage = "auditing"
	StageComposing          Stage = "composing"
	StageAwaitingUserChoice Stage = "awaiting_user_choice"
	StageRefiningItinerary  Stage = "refining_itinerary"
	StageUpdatingFields     Stage = "updating_fields"
	StageTerminated         Stage = "terminated"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageCollectingFields,
	StageAwaitingApproval,
	StageSourcingLogistics,
	StageAuditing,
	StageComposing,
	StageAwaitingUserChoice,
	StageRefiningItinerary,
	StageUpdatingFields,
	StageTerminated,
}

// stageTransitions is the table of legal moves. Terminated is reachable from every
// non-terminal stage.
var stageTransitions = map[Stage][]Stage{
	StageCollectingFields:   {StageAwaitingApproval},
	StageAwaitingApproval:   {StageSourcingLogistics, StageAwaitingApproval, StageCollectingFields},
	StageSourcingLogistics:  {StageAuditing},
	StageAuditing:           {StageComposing, StageUpdatingFields},
	StageComposing:          {StageAwaitingUserChoice},
	StageAwaitingUserChoice: {StageRefiningItinerary, StageUpdatingFields},
	StageRefiningItinerary:  {StageAwaitingUserChoice},
	StageUpdatingFields:     {StageCollectingFields},
}

// CanTransition reports whether the pipeline may move from one stage to another.
func CanTransition(from, to Stage) bool {
	if from == StageTerminated {
		return false
	}
	if to == StageTerminated {
		return true
	}
	return slices.Contains(stageTransitions[from], to)
}

// Transition is one edge of the stage machine.
type Transition struct {
	From Stage `json:"from"`
	To   Stage `json:"to"`
}

// Transitions returns every legal edge, in pipeline order.
func Transitions() []Transition {
	var out []Transition
	for _, from := range Stages {
		if from == StageTerminated {
			continue
		}
		for _, to := range stageTransitions[from] {
			out = append(out, Transition{From: from, To: to})
		}
		out = append(out, Transition{From: from, To: StageTerminated})
	}
	return out
}
