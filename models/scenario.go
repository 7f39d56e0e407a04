package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scenario is a reusable negotiation setup: two personas plus the shared
// brief given identically to both of them.
type Scenario struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Brief     string             `bson:"brief" json:"brief"`
	AgentA    Persona            `bson:"agent_a" json:"agent_a"`
	AgentB    Persona            `bson:"agent_b" json:"agent_b"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Persona describes one negotiating agent. SystemPrompt is an optional
// verbatim override; when blank the prompt is derived from name/role/culture.
type Persona struct {
	Name         string `bson:"name" json:"name"`
	Role         string `bson:"role" json:"role"`
	Culture      string `bson:"culture" json:"culture"`
	SystemPrompt string `bson:"system_prompt,omitempty" json:"system_prompt,omitempty"`
}

// DefaultScenario returns the built-in sensor-module procurement preset used
// when no scenario store is configured.
func DefaultScenario() *Scenario {
	now := time.Now()
	return &Scenario{
		ID:   primitive.NewObjectID(),
		Name: "Sensor module procurement",
		Brief: "Context: Procurement of 10,000 sensor modules for Q4.\n" +
			"Constraints: Seller wants ≥$48/unit and 50% upfront. Buyer target ≤$42/unit, net-30.\n" +
			"Objective: Find terms acceptable to both in ≤6 messages each.\n" +
			"Output: clear, concise proposals; stop when agreement or stalemate.",
		AgentA: Persona{
			Name:    "Aiko",
			Role:    "Seller for premium sensor modules",
			Culture: "High-context, relationship-first; prefers indirect concessions and face-saving.",
		},
		AgentB: Persona{
			Name:    "Blake",
			Role:    "Procurement lead seeking volume discount",
			Culture: "Low-context, direct; values clear terms, timelines, and price transparency.",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
