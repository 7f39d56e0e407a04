package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"negosim/db"
	"negosim/models"
)

type ScenarioSummary struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Brief     string         `json:"brief"`
	AgentA    models.Persona `json:"agent_a"`
	AgentB    models.Persona `json:"agent_b"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ScenarioListResponse struct {
	Scenarios []ScenarioSummary `json:"scenarios"`
	Count     int               `json:"count"`
}

type CreateScenarioRequest struct {
	Name   string         `json:"name"`
	Brief  string         `json:"brief"`
	AgentA models.Persona `json:"agent_a"`
	AgentB models.Persona `json:"agent_b"`
}

type CreateScenarioResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Scenarios serves the collection route: GET lists the stored presets, POST
// creates a new one.
func (a *API) Scenarios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listScenarios(w, r)
	case http.MethodPost:
		a.createScenario(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) listScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := a.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list scenarios")
		http.Error(w, "Failed to fetch scenarios", http.StatusInternalServerError)
		return
	}

	items := make([]ScenarioSummary, 0, len(scenarios))
	for i := range scenarios {
		items = append(items, toSummary(&scenarios[i]))
	}
	writeJSON(w, http.StatusOK, ScenarioListResponse{Scenarios: items, Count: len(items)})
}

func (a *API) createScenario(w http.ResponseWriter, r *http.Request) {
	var req CreateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if err := validateScenario(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CreateScenarioResponse{Error: err.Error()})
		return
	}

	id, err := a.store.Create(r.Context(), &models.Scenario{
		Name:   req.Name,
		Brief:  req.Brief,
		AgentA: req.AgentA,
		AgentB: req.AgentB,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create scenario")
		http.Error(w, "Failed to create scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, CreateScenarioResponse{ID: id})
}

func validateScenario(req *CreateScenarioRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("scenario name is required")
	}
	if strings.TrimSpace(req.Brief) == "" {
		return errors.New("scenario brief is required")
	}
	if strings.TrimSpace(req.AgentA.Name) == "" || strings.TrimSpace(req.AgentB.Name) == "" {
		return errors.New("both agents need a name")
	}
	if req.AgentA.Name == req.AgentB.Name {
		return errors.New("agent names must differ")
	}
	return nil
}

// ScenarioDetail serves GET /scenario?id=...
func (a *API) ScenarioDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Scenario ID is required", http.StatusBadRequest)
		return
	}

	scn, err := a.store.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("scenario_id", id).Msg("failed to fetch scenario")
		http.Error(w, "Failed to fetch scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(scn))
}

// ScenarioByID handles RESTful paths like /scenarios/ID: GET returns the
// preset, DELETE removes it.
func (a *API) ScenarioByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/scenarios/")
	if id == "" || id == r.URL.Path {
		http.Error(w, "Scenario ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		r.URL.RawQuery = "id=" + id
		a.ScenarioDetail(w, r)
	case http.MethodDelete:
		a.deleteScenario(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) deleteScenario(w http.ResponseWriter, r *http.Request, id string) {
	err := a.store.Delete(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Scenario not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("scenario_id", id).Msg("failed to delete scenario")
		http.Error(w, "Failed to delete scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func toSummary(scn *models.Scenario) ScenarioSummary {
	return ScenarioSummary{
		ID:        scn.ID.Hex(),
		Name:      scn.Name,
		Brief:     scn.Brief,
		AgentA:    scn.AgentA,
		AgentB:    scn.AgentB,
		CreatedAt: scn.CreatedAt,
		UpdatedAt: scn.UpdatedAt,
	}
}
