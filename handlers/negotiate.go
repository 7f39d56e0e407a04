package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"negosim/config"
	"negosim/db"
	"negosim/models"
	"negosim/negotiation"
)

// API bundles the handlers' dependencies: the scenario store, the engine
// built around the startup-selected model transport, and the configured run
// defaults.
type API struct {
	store  db.ScenarioStore
	engine *negotiation.Engine
	cfg    *config.Config
}

func NewAPI(store db.ScenarioStore, engine *negotiation.Engine, cfg *config.Config) *API {
	return &API{store: store, engine: engine, cfg: cfg}
}

type NegotiateRequest struct {
	ScenarioID string           `json:"scenario_id,omitempty"`
	Scenario   *models.Scenario `json:"scenario,omitempty"`

	// Optional per-request overrides of the configured defaults.
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	MaxTurns     *int     `json:"max_turns,omitempty"`
	TurnDelay    *float64 `json:"turn_delay_seconds,omitempty"`
	FirstSpeaker string   `json:"first_speaker,omitempty"`
}

type NegotiateResponse struct {
	RunID      string                 `json:"run_id"`
	Outcome    negotiation.Outcome    `json:"outcome"`
	Turns      int                    `json:"turns"`
	Transcript negotiation.Transcript `json:"transcript"`
	Error      string                 `json:"error,omitempty"`
}

// Negotiate runs one full negotiation synchronously and returns the
// transcript. Each request owns a fresh run state, so concurrent requests
// never share anything. With ?format=txt the plain-text projection is
// returned instead of JSON.
func (a *API) Negotiate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NegotiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	scn, status, err := a.resolveScenario(r.Context(), &req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	first := req.FirstSpeaker
	if first == "" {
		first = a.cfg.Run.FirstSpeaker
	}

	state, err := negotiation.NewRun(toSpec(scn.AgentA), toSpec(scn.AgentB), scn.Brief, first)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runCfg := a.runConfig(&req)
	if err := runCfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := NegotiateResponse{RunID: state.ID}
	if err := a.engine.Run(r.Context(), state, runCfg); err != nil {
		// Transport failure: the run is over, but the transcript gathered so
		// far is still returned alongside the diagnostic.
		log.Error().Err(err).Str("run_id", state.ID).Msg("negotiation run failed")
		resp.Error = err.Error()
	}
	resp.Outcome = state.Outcome
	resp.Turns = len(state.Transcript)
	resp.Transcript = state.Transcript
	if resp.Transcript == nil {
		resp.Transcript = negotiation.Transcript{}
	}

	if r.URL.Query().Get("format") == "txt" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(state.Transcript.PlainText()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// resolveScenario picks the scenario for a run: an inline document, a stored
// preset by ID, or the built-in default when the request names neither.
func (a *API) resolveScenario(ctx context.Context, req *NegotiateRequest) (*models.Scenario, int, error) {
	if req.Scenario != nil {
		return req.Scenario, 0, nil
	}
	if req.ScenarioID != "" {
		scn, err := a.store.Get(ctx, req.ScenarioID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, http.StatusNotFound, err
		}
		if err != nil {
			log.Error().Err(err).Str("scenario_id", req.ScenarioID).Msg("failed to fetch scenario")
			return nil, http.StatusInternalServerError, errors.New("failed to fetch scenario")
		}
		return scn, 0, nil
	}
	return models.DefaultScenario(), 0, nil
}

func (a *API) runConfig(req *NegotiateRequest) negotiation.RunConfig {
	cfg := negotiation.RunConfig{
		Model:       a.cfg.LLM.Model,
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		MaxTurns:    a.cfg.Run.MaxTurns,
		TurnDelay:   a.cfg.Run.Delay(),
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}
	if req.Temperature != nil {
		cfg.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		cfg.MaxTokens = *req.MaxTokens
	}
	if req.MaxTurns != nil {
		cfg.MaxTurns = *req.MaxTurns
	}
	if req.TurnDelay != nil {
		cfg.TurnDelay = time.Duration(*req.TurnDelay * float64(time.Second))
	}
	return cfg
}

func toSpec(p models.Persona) negotiation.AgentSpec {
	return negotiation.AgentSpec{
		Name:              p.Name,
		Role:              p.Role,
		Culture:           p.Culture,
		SystemInstruction: p.SystemPrompt,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
