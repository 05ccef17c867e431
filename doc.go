/*
Package voyage is a trip planning orchestrator built as an explicit stage pipeline.

A session moves through a fixed state machine: field collection, a shortlist approval gate,
logistics sourcing, a budget and feasibility audit, itinerary composition, and a
refine/update/quit loop. Every stage hands off an immutable snapshot, so sessions can be
persisted between answers and resumed from any channel (CLI, HTTP, MCP).

# Collaborators

The natural-language work lives behind four ports (extraction, discovery, logistics and
composition). The package ships YAML-backed fixture collaborators for demos and tests;
real providers are injected with WithCollaborators. The pipeline never trusts them: the
field validator re-checks every extraction and the auditor re-checks every plan.

# Usage

	planner, err := voyage.New()
	if err != nil {
		log.Fatal(err)
	}
	defer planner.Close()

	ctx := context.Background()
	resp, _, err := runner.StartAndRender(ctx, planner, planner.Sessions(), voyage.NewSessionID(),
		"from: Delhi to: Tokyo start: 2026-04-10 days: 5 budget: 2000 USD")
	if err != nil {
		log.Fatal(err)
	}
	for _, act := range resp.Actions {
		fmt.Println(act.Payload)
	}

	// Later, from any channel:
	resp, err = runner.NavigateAndRender(ctx, planner, planner.Sessions(), resp.State.SessionID, "approve")
*/
package voyage
