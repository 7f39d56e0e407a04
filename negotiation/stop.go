package negotiation

import "strings"

// Outcome classifies how a run ended. Empty means the run is still live.
type Outcome string

const (
	OutcomeNone           Outcome = ""
	OutcomeAgreement      Outcome = "agreement"
	OutcomeNoDeal         Outcome = "no_deal"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeTurnLimit      Outcome = "turn_limit_exhausted"
)

// Sentinel phrases the agents are instructed to emit when the negotiation
// ends. The wording must stay in sync with the system prompt template.
const (
	agreementSentinel = "AGREEMENT REACHED:"
	noDealSentinel    = "NO DEAL:"
)

// DetectOutcome scans an utterance for a stop sentinel. Matching is plain
// case-insensitive substring search. The agreement sentinel is checked
// first, so a message carrying both resolves to agreement.
func DetectOutcome(text string) Outcome {
	t := strings.ToUpper(text)
	if strings.Contains(t, agreementSentinel) {
		return OutcomeAgreement
	}
	if strings.Contains(t, noDealSentinel) {
		return OutcomeNoDeal
	}
	return OutcomeNone
}
