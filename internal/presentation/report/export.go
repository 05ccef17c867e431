package report

import (
	"encoding/json"

	"github.com/aretw0/voyage/pkg/budget"
	"github.com/aretw0/voyage/pkg/domain"
)

// Document is the exported form of a finished plan.
type Document struct {
	SessionID   string                `json:"session_id"`
	Origin      string                `json:"origin"`
	Destination string                `json:"destination"`
	Budget      domain.Money          `json:"budget"`
	TotalBudget domain.Money          `json:"total_budget"`
	PartySize   int                   `json:"party_size"`
	Days        int                   `json:"days"`
	Itinerary   *domain.Itinerary     `json:"itinerary,omitempty"`
	Logistics   *domain.LogisticsPlan `json:"logistics,omitempty"`
	Audit       *domain.AuditReport   `json:"audit,omitempty"`
}

// Export builds the document for a session.
func Export(s *domain.SessionState) Document {
	return Document{
		SessionID:   s.SessionID,
		Origin:      s.Request.Origin,
		Destination: s.Request.Destination,
		Budget:      s.Request.Budget,
		TotalBudget: budget.Total(s.Request.Budget, s.Request.Party()),
		PartySize:   s.Request.Party(),
		Days:        s.Request.Days(),
		Itinerary:   s.Itinerary,
		Logistics:   s.Logistics,
		Audit:       s.Audit,
	}
}

// JSON returns the indented export document.
func JSON(s *domain.SessionState) ([]byte, error) {
	return json.MarshalIndent(Export(s), "", "  ")
}
