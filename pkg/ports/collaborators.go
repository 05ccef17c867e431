package ports

import (
	"context"

	"github.com/aretw0/voyage/pkg/domain"
)

// Extractor turns free-form text into candidate request fields.
// Its output is untrusted and always passes through the field validator.
type Extractor interface {
	Extract(ctx context.Context, text string, current domain.TripRequest) (domain.Extraction, error)
}

// DiscoveryQuery is the input of a discovery round.
type DiscoveryQuery struct {
	Request domain.TripRequest
	// Feedback holds every rejection reason given so far, oldest first.
	Feedback []string
}

// Discoverer proposes candidate activities for a complete request.
type Discoverer interface {
	Discover(ctx context.Context, q DiscoveryQuery) (domain.Shortlist, error)
}

// LogisticsQuery is the input of logistics sourcing.
type LogisticsQuery struct {
	Request   domain.TripRequest
	Shortlist domain.Shortlist
}

// LogisticsSource prices flights and lodging.
// Items it cannot price must be returned with domain.ResolutionNotFound. Returning a
// *domain.DataNotFoundError means nothing at all could be sourced.
type LogisticsSource interface {
	Source(ctx context.Context, q LogisticsQuery) (domain.LogisticsPlan, error)
}

// CompositionInput carries every artifact the composer may use.
type CompositionInput struct {
	Request     domain.TripRequest
	Shortlist   domain.Shortlist
	Logistics   domain.LogisticsPlan
	Audit       domain.AuditReport
	Refinements []string
	// Previous is the itinerary being refined, nil on the first composition.
	Previous *domain.Itinerary
}

// Composer produces a day-by-day itinerary.
type Composer interface {
	Compose(ctx context.Context, in CompositionInput) (domain.Itinerary, error)
}

// Collaborators bundles the external collaborators of the pipeline.
type Collaborators struct {
	Extractor Extractor
	Discovery Discoverer
	Logistics LogisticsSource
	Composer  Composer
}
