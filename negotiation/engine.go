package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"negosim/llm"
)

// RunConfig bounds a single run. Validate enforces the supported ranges;
// out-of-range values are rejected, never clamped.
type RunConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	MaxTurns    int
	TurnDelay   time.Duration
}

func (c RunConfig) Validate() error {
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 1.5 {
		return fmt.Errorf("temperature %.2f out of range [0.0, 1.5]", c.Temperature)
	}
	if c.MaxTokens < 100 || c.MaxTokens > 1000 {
		return fmt.Errorf("max tokens %d out of range [100, 1000]", c.MaxTokens)
	}
	if c.MaxTurns < 2 || c.MaxTurns > 50 {
		return fmt.Errorf("max turns %d out of range [2, 50]", c.MaxTurns)
	}
	if c.TurnDelay < 0 || c.TurnDelay > 2*time.Second {
		return fmt.Errorf("turn delay %s out of range [0s, 2s]", c.TurnDelay)
	}
	return nil
}

// Engine drives the alternating turn loop. One engine may serve many runs;
// all per-run state lives in the RunState it is handed.
type Engine struct {
	invoker llm.Invoker
	sleep   func(time.Duration)
	logger  zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleep replaces the inter-turn pacing function, so tests can stub it
// and paced runs finish instantly.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// WithLogger attaches a logger for per-turn progress.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(invoker llm.Invoker, opts ...Option) *Engine {
	e := &Engine{
		invoker: invoker,
		sleep:   time.Sleep,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the turn loop until a stop sentinel is detected, the turn
// budget is exhausted, or the transport fails. Exactly one model invocation
// is in flight at any time; the loop owns the run state alone, so no locking
// is involved. MaxTurns counts individual agent messages, not rounds: a
// budget of 12 allows at most 12 utterances in total.
//
// On a transport failure the run halts immediately with
// OutcomeTransportError and the wrapped error is returned; the failed turn
// is not recorded and the transcript accumulated so far stays intact. Every
// other exit returns nil with the cause in state.Outcome.
func (e *Engine) Run(ctx context.Context, state *RunState, cfg RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for state.Outcome == OutcomeNone {
		speaker, incoming := state.current()

		msgs := BuildTurnMessages(speaker.Context, incoming)
		text, err := e.invoker.Invoke(ctx, llm.Request{
			Model:       cfg.Model,
			Messages:    msgs,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			state.Outcome = OutcomeTransportError
			return fmt.Errorf("model invocation for %s: %w", speaker.Name, err)
		}

		state.Transcript = append(state.Transcript, TranscriptEntry{
			Speaker: speakerRole,
			Who:     speaker.Name,
			Text:    text,
		})
		state.setLast(text)

		e.logger.Debug().
			Str("run_id", state.ID).
			Str("who", speaker.Name).
			Int("messages", len(state.Transcript)).
			Msg("turn completed")

		if outcome := DetectOutcome(text); outcome != OutcomeNone {
			state.Outcome = outcome
			break
		}

		state.TurnsTaken++
		if state.TurnsTaken >= cfg.MaxTurns {
			state.Outcome = OutcomeTurnLimit
			break
		}
		state.Next = state.Next.Other()

		if cfg.TurnDelay > 0 {
			e.sleep(cfg.TurnDelay)
		}
	}

	e.logger.Info().
		Str("run_id", state.ID).
		Str("outcome", string(state.Outcome)).
		Int("messages", len(state.Transcript)).
		Msg("run finished")
	return nil
}
