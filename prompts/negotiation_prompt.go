package prompts

import "fmt"

// DefaultSystemPrompt generates the system prompt for a negotiation agent
// from its persona fields. The template is fixed: the closing two lines tell
// the model which sentinel phrases end the run, so the wording must stay in
// sync with the stop detector.
func DefaultSystemPrompt(name, role, culture string) string {
	return fmt.Sprintf(`You are %s, a negotiation agent. Role: %s.
Cultural profile: %s.
Goal: reach a mutually acceptable agreement while following your constraints and style.
Be concise, one turn at a time. Do not invent tools. Avoid repeating yourself.
If you reach a deal, explicitly include the line: AGREEMENT REACHED: <one-sentence summary>.
If no deal is possible, include: NO DEAL: <reason>.`, name, role, culture)
}
