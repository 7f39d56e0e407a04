package negotiation

import (
	"errors"
	"strings"

	"negosim/llm"
)

// briefLabel prefixes the shared scenario brief when it is framed as the
// opening incoming message of each agent's context.
const briefLabel = "Negotiation brief:\n"

// NewAgentContext builds one agent's fixed priming state: the system
// instruction followed by the brief framed as an incoming message. The
// context is built once per agent per run and never mutated afterwards. An
// empty brief is permitted; the instruction text is not.
func NewAgentContext(systemInstruction, brief string) ([]llm.Message, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, errors.New("system instruction must not be empty")
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemInstruction},
		{Role: llm.RoleUser, Content: briefLabel + brief},
	}, nil
}

// BuildTurnMessages derives the message set for a single model invocation: a
// copy of the agent's context with the counterpart's last utterance, when
// there is one, appended verbatim as an incoming message. The result feeds
// exactly one request and is then discarded; mutating it never touches the
// agent context.
func BuildTurnMessages(agentCtx []llm.Message, counterpartUtterance string) []llm.Message {
	msgs := make([]llm.Message, len(agentCtx), len(agentCtx)+1)
	copy(msgs, agentCtx)
	if counterpartUtterance != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: counterpartUtterance})
	}
	return msgs
}
