package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"negosim/models"
)

// MemoryStore is a mutex-guarded in-memory ScenarioStore, used when no
// MongoDB URI is configured. It is seeded with the built-in preset so the
// binary works with zero infrastructure.
type MemoryStore struct {
	mu        sync.Mutex
	scenarios map[string]*models.Scenario
}

var _ ScenarioStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{scenarios: make(map[string]*models.Scenario)}
	def := models.DefaultScenario()
	s.scenarios[def.ID.Hex()] = def
	return s
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Scenario, 0, len(s.scenarios))
	for _, scn := range s.scenarios {
		out = append(out, *scn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scn, ok := s.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *scn
	return &copied, nil
}

func (s *MemoryStore) Create(ctx context.Context, scn *models.Scenario) (string, error) {
	now := time.Now()
	scn.CreatedAt = now
	scn.UpdatedAt = now
	if scn.ID.IsZero() {
		scn.ID = primitive.NewObjectID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *scn
	s.scenarios[scn.ID.Hex()] = &copied
	return scn.ID.Hex(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenarios[id]; !ok {
		return ErrNotFound
	}
	delete(s.scenarios, id)
	return nil
}
