package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"negosim/config"
	"negosim/db"
	"negosim/handlers"
	"negosim/llm"
	"negosim/middleware"
	"negosim/models"
	"negosim/negotiation"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of a single negotiation")
	configPath := flag.String("config", "", "path to a config file")
	scenarioID := flag.String("scenario", "", "scenario ID to run (default: built-in preset)")
	outDir := flag.String("out", ".", "directory for transcript exports")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg.Log)

	ctx := context.Background()

	invoker, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("model transport unavailable")
	}

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	engine := negotiation.NewEngine(invoker, negotiation.WithLogger(log.Logger))

	if *serve {
		runServer(cfg, store, engine)
		return
	}
	runOnce(ctx, cfg, store, engine, *scenarioID, *outDir)
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newStore(ctx context.Context, cfg *config.Config) (db.ScenarioStore, func()) {
	if cfg.Mongo.URI == "" {
		log.Info().Msg("no MongoDB URI configured, using in-memory scenario store")
		return db.NewMemoryStore(), func() {}
	}

	store, err := db.InitMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	return store, func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error closing MongoDB connection")
		}
	}
}

func runServer(cfg *config.Config, store db.ScenarioStore, engine *negotiation.Engine) {
	api := handlers.NewAPI(store, engine, cfg)

	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.EnableCORS(cfg.Server.AllowedOrigins, h)
	}
	http.HandleFunc("/negotiate", cors(api.Negotiate))
	http.HandleFunc("/scenarios", cors(api.Scenarios))
	http.HandleFunc("/scenarios/", cors(api.ScenarioByID))
	http.HandleFunc("/scenario", cors(api.ScenarioDetail))

	log.Info().Str("addr", cfg.Server.Addr).Msg("server running")
	log.Fatal().Err(http.ListenAndServe(cfg.Server.Addr, nil)).Msg("server stopped")
}

// runOnce drives a single negotiation and writes the transcript exports. On
// a transport failure the partial transcript is still exported before the
// process exits non-zero.
func runOnce(ctx context.Context, cfg *config.Config, store db.ScenarioStore, engine *negotiation.Engine, scenarioID, outDir string) {
	scn, err := pickScenario(ctx, store, scenarioID)
	if err != nil {
		log.Fatal().Err(err).Str("scenario_id", scenarioID).Msg("scenario unavailable")
	}

	state, err := negotiation.NewRun(agentSpec(scn.AgentA), agentSpec(scn.AgentB), scn.Brief, cfg.Run.FirstSpeaker)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid run setup")
	}

	runCfg := negotiation.RunConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxTurns:    cfg.Run.MaxTurns,
		TurnDelay:   cfg.Run.Delay(),
	}

	log.Info().
		Str("run_id", state.ID).
		Str("scenario", scn.Name).
		Str("model", runCfg.Model).
		Str("first_speaker", state.NextName()).
		Msg("run started")

	runErr := engine.Run(ctx, state, runCfg)

	if err := exportTranscript(state.Transcript, outDir); err != nil {
		log.Error().Err(err).Msg("failed to export transcript")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Str("outcome", string(state.Outcome)).Msg("run aborted")
	}

	log.Info().
		Str("outcome", string(state.Outcome)).
		Int("messages", len(state.Transcript)).
		Msg("run complete")
}

func pickScenario(ctx context.Context, store db.ScenarioStore, id string) (*models.Scenario, error) {
	if id == "" {
		return models.DefaultScenario(), nil
	}
	return store.Get(ctx, id)
}

func agentSpec(p models.Persona) negotiation.AgentSpec {
	return negotiation.AgentSpec{
		Name:              p.Name,
		Role:              p.Role,
		Culture:           p.Culture,
		SystemInstruction: p.SystemPrompt,
	}
}

// exportTranscript writes the transcript as timestamped JSON and plain-text
// files.
func exportTranscript(t negotiation.Transcript, dir string) error {
	ts := time.Now().Unix()

	data, err := t.JSON()
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(dir, fmt.Sprintf("transcript_%d.json", ts))
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	txtPath := filepath.Join(dir, fmt.Sprintf("transcript_%d.txt", ts))
	if err := os.WriteFile(txtPath, []byte(t.PlainText()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", txtPath, err)
	}

	log.Info().Str("json", jsonPath).Str("txt", txtPath).Msg("transcript exported")
	return nil
}
