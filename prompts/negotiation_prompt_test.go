package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSystemPrompt(t *testing.T) {
	got := DefaultSystemPrompt(
		"Aiko",
		"Seller for premium sensor modules",
		"High-context, relationship-first; prefers indirect concessions and face-saving.",
	)

	// The persona's culture text ends with a period and the template adds its
	// own, so the rendered line carries both.
	want := "You are Aiko, a negotiation agent. Role: Seller for premium sensor modules.\n" +
		"Cultural profile: High-context, relationship-first; prefers indirect concessions and face-saving..\n" +
		"Goal: reach a mutually acceptable agreement while following your constraints and style.\n" +
		"Be concise, one turn at a time. Do not invent tools. Avoid repeating yourself.\n" +
		"If you reach a deal, explicitly include the line: AGREEMENT REACHED: <one-sentence summary>.\n" +
		"If no deal is possible, include: NO DEAL: <reason>."
	assert.Equal(t, want, got)
}

func TestDefaultSystemPromptCarriesStopSentinels(t *testing.T) {
	got := DefaultSystemPrompt("Blake", "Buyer", "Direct")

	assert.Contains(t, got, "AGREEMENT REACHED: <one-sentence summary>")
	assert.Contains(t, got, "NO DEAL: <reason>")
}
