// Package prompt composes the full LLM request for one interrogation turn:
// safety preamble, world knowledge, the character's persona for the day (or
// the impostor framing when the skinwalker is wearing them), village-wide
// events, the recent conversation window, and the reply envelope that the
// response interpreter parses.
//
// The composer is pure: it performs no I/O, has no side effects, and is safe
// for concurrent use.
package prompt

import (
	"fmt"
	"strings"

	"github.com/duskvale/duskvale/internal/cast"
	"github.com/duskvale/duskvale/internal/session"
	"github.com/duskvale/duskvale/pkg/provider/llm"
)

// replyEnvelope tells the model how to shape its answer. The journal marker
// must match what [interpret.Parse] looks for.
const replyEnvelope = `REPLY FORMAT:
Reply fully in character, in 20 words or fewer.
If this exchange reveals something worth the investigator's journal, end your
reply with the marker ||| followed by JOURNAL: and a summary of five words or
fewer. Otherwise end without any marker.

Example:
I saw him by the mill at midnight, ji.|||JOURNAL: Seen at mill, midnight`

// Compose builds the completion request for interrogating c on day with the
// player's message, the character's visible history, and the village events
// known so far. The second return value is false when c has no persona for
// the day — the character is unavailable and no model call should be made.
//
// When c is the skinwalker's disguise for the day, the impostor framing
// replaces the ordinary persona.
func Compose(c cast.Character, day int, message string, history []session.Turn, events []session.SharedEvent) (llm.CompletionRequest, bool) {
	var persona string
	if cast.IsImpostor(c, day) {
		persona = cast.ImpostorPrompt(c, day)
	} else {
		p, ok := cast.PersonaPrompt(c, day)
		if !ok {
			return llm.CompletionRequest{}, false
		}
		persona = cast.WorldKnowledge + "\n\n" + p
	}

	var sb strings.Builder
	sb.WriteString(cast.MasterConstraint)
	sb.WriteString("\n\n")
	sb.WriteString(persona)

	if section := formatEventsSection(events); section != "" {
		sb.WriteString("\n\n## The Village Knows\n")
		sb.WriteString(section)
	}

	sb.WriteString("\n\n")
	sb.WriteString(replyEnvelope)

	messages := make([]llm.Message, 0, 2*len(history)+1)
	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.Player},
			llm.Message{Role: "assistant", Content: turn.Reply},
		)
	}
	messages = append(messages, llm.Message{Role: "user", Content: message})

	return llm.CompletionRequest{
		SystemPrompt: sb.String(),
		Messages:     messages,
	}, true
}

// formatEventsSection renders village-wide events as one day-stamped line
// each, oldest first. Returns an empty string when there are none.
func formatEventsSection(events []session.SharedEvent) string {
	if len(events) == 0 {
		return ""
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("Day %d: %s", e.Day, e.Text))
	}
	return strings.Join(lines, "\n")
}
