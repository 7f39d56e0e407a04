package db

import (
	"context"
	"errors"

	"negosim/models"
)

// ErrNotFound is returned when a scenario ID has no match.
var ErrNotFound = errors.New("scenario not found")

// ScenarioStore is the persistence port for negotiation scenario presets.
// Only the reusable setup documents are stored; run transcripts never are.
type ScenarioStore interface {
	List(ctx context.Context) ([]models.Scenario, error)
	Get(ctx context.Context, id string) (*models.Scenario, error)
	Create(ctx context.Context, scn *models.Scenario) (string, error)
	Delete(ctx context.Context, id string) error
}
