package voyage_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/voyage"
	"github.com/aretw0/voyage/internal/config"
	"github.com/aretw0/voyage/pkg/runner"
)

// ExampleNew drives one session through the approval gate with the fixture collaborators.
func ExampleNew() {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory

	planner, err := voyage.New(voyage.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}
	defer planner.Close()

	ctx := context.Background()
	resp, _, err := runner.StartAndRender(ctx, planner, planner.Sessions(), "example",
		"from: Delhi to: Tokyo start: 2026-04-10 days: 5 budget: 100000 INR party: 2 style: Couple interests: Food")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.State.Stage, resp.State.Pending)

	resp, err = runner.NavigateAndRender(ctx, planner, planner.Sessions(), "example", "approve")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.State.Stage, resp.State.Pending)
	fmt.Println(len(resp.State.Itinerary.Days), "days planned")

	// Output:
	// awaiting_approval approval
	// awaiting_user_choice next_step
	// 5 days planned
}
