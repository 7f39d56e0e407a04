package negotiation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// speakerRole is the fixed role tag carried by every transcript entry.
const speakerRole = "assistant"

// TranscriptEntry is one recorded utterance. Who carries the agent display
// name; Speaker is always the assistant role tag.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Who     string `json:"who"`
	Text    string `json:"text"`
}

// Transcript is the append-only, generation-ordered record of a run.
// Entries are never reordered or mutated after insertion; the export methods
// are pure projections.
type Transcript []TranscriptEntry

// JSON renders the transcript pretty-printed with two-space indentation.
// Non-ASCII text is written verbatim, not escaped.
func (t Transcript) JSON() ([]byte, error) {
	if t == nil {
		t = Transcript{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// PlainText renders "{who}: {text}" records separated by one blank line.
func (t Transcript) PlainText() string {
	lines := make([]string, 0, len(t))
	for _, entry := range t {
		lines = append(lines, fmt.Sprintf("%s: %s", entry.Who, entry.Text))
	}
	return strings.Join(lines, "\n\n")
}
