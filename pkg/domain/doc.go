/*
Package domain contains the core models of the voyage planning engine.

It defines the trip request, the artifacts produced by each pipeline stage (Shortlist,
LogisticsPlan, AuditReport, Itinerary) and the SessionState aggregate that carries them
between stages. The package is kept free of I/O and persistence concerns.

# Key Entities

  - TripRequest: the structured travel intent, validated incrementally.
  - Shortlist: candidate activities produced by discovery; frozen once approved.
  - LogisticsPlan: flight and lodging line items. Unavailable data is marked with
    ResolutionNotFound, never with a made-up price.
  - AuditReport: budget, timing and lodging-night findings for a plan.
  - SessionState: the aggregate owned by the pipeline controller, including the
    append-only handoff Trail.
*/
package domain
