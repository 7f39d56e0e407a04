package negotiation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"negosim/llm"
	"negosim/prompts"
)

// Speaker identifies which of the two agents acts next.
type Speaker string

const (
	SpeakerA Speaker = "A"
	SpeakerB Speaker = "B"
)

func (s Speaker) Other() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// AgentSpec is the immutable per-run persona configuration. A blank
// SystemInstruction derives one from name/role/culture via the fixed
// template; a non-blank one is used verbatim.
type AgentSpec struct {
	Name              string
	Role              string
	Culture           string
	SystemInstruction string
}

func (s AgentSpec) systemInstruction() string {
	if sys := strings.TrimSpace(s.SystemInstruction); sys != "" {
		return sys
	}
	return prompts.DefaultSystemPrompt(s.Name, s.Role, s.Culture)
}

// AgentState pairs an agent's display name with its fixed context.
type AgentState struct {
	Name    string
	Context []llm.Message
}

// RunState is the complete mutable state of one negotiation run: an explicit
// value owned by its caller. Nothing in this package holds global run state,
// so independent runs never interfere.
type RunState struct {
	ID         string
	AgentA     AgentState
	AgentB     AgentState
	LastA      string // empty until A has spoken
	LastB      string
	Next       Speaker
	TurnsTaken int
	Outcome    Outcome
	Transcript Transcript
}

// NewRun validates the personas, builds both agent contexts, and returns a
// fresh run positioned at the first speaker's turn. firstSpeaker selects by
// agent name; blank means agent A opens.
func NewRun(a, b AgentSpec, brief, firstSpeaker string) (*RunState, error) {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(b.Name) == "" {
		return nil, errors.New("both agents need a name")
	}
	if a.Name == b.Name {
		return nil, fmt.Errorf("agent names must differ (both are %q)", a.Name)
	}

	aCtx, err := NewAgentContext(a.systemInstruction(), brief)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.Name, err)
	}
	bCtx, err := NewAgentContext(b.systemInstruction(), brief)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", b.Name, err)
	}

	next := SpeakerA
	switch firstSpeaker {
	case "", a.Name:
	case b.Name:
		next = SpeakerB
	default:
		return nil, fmt.Errorf("first speaker %q is neither %q nor %q", firstSpeaker, a.Name, b.Name)
	}

	return &RunState{
		ID:     uuid.NewString(),
		AgentA: AgentState{Name: a.Name, Context: aCtx},
		AgentB: AgentState{Name: b.Name, Context: bCtx},
		Next:   next,
	}, nil
}

// current returns the agent whose turn it is and the counterpart's last
// utterance (empty when the counterpart has not spoken yet).
func (s *RunState) current() (*AgentState, string) {
	if s.Next == SpeakerA {
		return &s.AgentA, s.LastB
	}
	return &s.AgentB, s.LastA
}

func (s *RunState) setLast(text string) {
	if s.Next == SpeakerA {
		s.LastA = text
	} else {
		s.LastB = text
	}
}

// NextName resolves the next speaker to its display name.
func (s *RunState) NextName() string {
	if s.Next == SpeakerA {
		return s.AgentA.Name
	}
	return s.AgentB.Name
}
