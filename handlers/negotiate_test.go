package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negosim/config"
	"negosim/db"
	"negosim/llm"
	"negosim/negotiation"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		LLM: config.LLMConfig{
			Provider:    config.ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   400,
		},
		Run: config.RunConfig{MaxTurns: 12},
	}
}

func testAPI(inv llm.Invoker) *API {
	engine := negotiation.NewEngine(inv, negotiation.WithSleep(func(time.Duration) {}))
	return NewAPI(db.NewMemoryStore(), engine, testConfig())
}

// countingInvoker replies with numbered filler; no sentinel, no errors.
func countingInvoker() llm.Invoker {
	calls := 0
	return llm.InvokerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return fmt.Sprintf("offer %d", calls), nil
	})
}

func postNegotiate(t *testing.T, api *API, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.Negotiate(rec, req)
	return rec
}

func decodeNegotiate(t *testing.T, rec *httptest.ResponseRecorder) NegotiateResponse {
	t.Helper()
	var resp NegotiateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestNegotiateDefaultScenario(t *testing.T) {
	var first llm.Request
	api := testAPI(llm.InvokerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if first.Model == "" {
			first = req
		}
		return "AGREEMENT REACHED: $45/unit.", nil
	}))

	rec := postNegotiate(t, api, "/negotiate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNegotiate(t, rec)
	assert.Equal(t, negotiation.OutcomeAgreement, resp.Outcome)
	assert.Equal(t, 1, resp.Turns)
	require.Len(t, resp.Transcript, 1)
	assert.Equal(t, "Aiko", resp.Transcript[0].Who)
	assert.NotEmpty(t, resp.RunID)
	assert.Empty(t, resp.Error)

	// The default scenario's persona and brief reach the transport.
	assert.Equal(t, "gpt-4o-mini", first.Model)
	require.Len(t, first.Messages, 2)
	assert.Contains(t, first.Messages[0].Content, "You are Aiko, a negotiation agent.")
	assert.Contains(t, first.Messages[1].Content, "Negotiation brief:\nContext: Procurement of 10,000 sensor modules")
}

func TestNegotiateMaxTurnsOverride(t *testing.T) {
	api := testAPI(countingInvoker())

	rec := postNegotiate(t, api, "/negotiate", `{"max_turns": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNegotiate(t, rec)
	assert.Equal(t, negotiation.OutcomeTurnLimit, resp.Outcome)
	assert.Equal(t, 2, resp.Turns)
	require.Len(t, resp.Transcript, 2)
	assert.Equal(t, "Aiko", resp.Transcript[0].Who)
	assert.Equal(t, "Blake", resp.Transcript[1].Who)
}

func TestNegotiatePlainTextFormat(t *testing.T) {
	api := testAPI(countingInvoker())

	rec := postNegotiate(t, api, "/negotiate?format=txt", `{"max_turns": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Aiko: offer 1\n\nBlake: offer 2", rec.Body.String())
}

func TestNegotiateTransportErrorStillReturnsTranscript(t *testing.T) {
	calls := 0
	api := testAPI(llm.InvokerFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		if calls == 2 {
			return "", fmt.Errorf("upstream unavailable")
		}
		return "offer", nil
	}))

	rec := postNegotiate(t, api, "/negotiate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNegotiate(t, rec)
	assert.Equal(t, negotiation.OutcomeTransportError, resp.Outcome)
	assert.Equal(t, 1, resp.Turns)
	require.Len(t, resp.Transcript, 1)
	assert.Equal(t, "Aiko", resp.Transcript[0].Who)
	assert.Contains(t, resp.Error, "Blake")
	assert.Contains(t, resp.Error, "upstream unavailable")
}

func TestNegotiateInlineScenario(t *testing.T) {
	api := testAPI(countingInvoker())

	body := `{
		"scenario": {
			"name": "Licensing",
			"brief": "Patent license renewal.",
			"agent_a": {"name": "Ana", "role": "Licensor", "culture": "direct"},
			"agent_b": {"name": "Ben", "role": "Licensee", "culture": "direct"}
		},
		"first_speaker": "Ben",
		"max_turns": 2
	}`
	rec := postNegotiate(t, api, "/negotiate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNegotiate(t, rec)
	require.Len(t, resp.Transcript, 2)
	assert.Equal(t, "Ben", resp.Transcript[0].Who)
	assert.Equal(t, "Ana", resp.Transcript[1].Who)
}

func TestNegotiateStoredScenario(t *testing.T) {
	api := testAPI(countingInvoker())

	scenarios, err := api.store.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	body := fmt.Sprintf(`{"scenario_id": %q, "max_turns": 2}`, scenarios[0].ID.Hex())
	rec := postNegotiate(t, api, "/negotiate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeNegotiate(t, rec)
	assert.Equal(t, negotiation.OutcomeTurnLimit, resp.Outcome)
	assert.Equal(t, "Aiko", resp.Transcript[0].Who)
}

func TestNegotiateScenarioNotFound(t *testing.T) {
	api := testAPI(countingInvoker())

	rec := postNegotiate(t, api, "/negotiate", `{"scenario_id": "000000000000000000000000"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNegotiateRejectsOutOfRangeOverrides(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "max turns too low", body: `{"max_turns": 1}`},
		{name: "max turns too high", body: `{"max_turns": 51}`},
		{name: "temperature too high", body: `{"temperature": 2.0}`},
		{name: "temperature negative", body: `{"temperature": -0.1}`},
		{name: "max tokens too low", body: `{"max_tokens": 99}`},
		{name: "delay too long", body: `{"turn_delay_seconds": 2.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testAPI(countingInvoker())
			rec := postNegotiate(t, api, "/negotiate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestNegotiateRejectsUnknownFirstSpeaker(t *testing.T) {
	api := testAPI(countingInvoker())

	rec := postNegotiate(t, api, "/negotiate", `{"first_speaker": "Casey"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNegotiateBadJSON(t *testing.T) {
	api := testAPI(countingInvoker())

	rec := postNegotiate(t, api, "/negotiate", `{"max_turns": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNegotiateMethodNotAllowed(t *testing.T) {
	api := testAPI(countingInvoker())

	req := httptest.NewRequest(http.MethodGet, "/negotiate", nil)
	rec := httptest.NewRecorder()
	api.Negotiate(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
