package convo

import (
	"fmt"
	"strings"
)

// Transcript renders turns as "role: text" lines in chronological order.
func Transcript(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Text))
	}
	return strings.Join(lines, "\n")
}

// RenderPrompt flattens a turn window into a single model prompt: the
// preamble, the transcript, and a trailing "model:" cue marking where the
// model's continuation should begin.
func RenderPrompt(preamble string, turns []Turn) string {
	return preamble + "\n\n" + Transcript(turns) + "\n\nmodel:"
}
