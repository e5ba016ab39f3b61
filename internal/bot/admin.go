package bot

import (
	"fmt"

	"github.com/mivora/geminibot/internal/convo"
)

// ContextView is the admin-facing summary of one channel's window.
type ContextView struct {
	Transcript string
	Length     int
	Capacity   int
}

// ViewContext reports the channel's turns and both current length and
// configured capacity.
func (b *Bot) ViewContext(channelID string) ContextView {
	snap := b.store.Get(channelID)
	transcript := convo.Transcript(snap.Turns)
	if transcript == "" {
		transcript = "No messages in context"
	}
	return ContextView{
		Transcript: transcript,
		Length:     len(snap.Turns),
		Capacity:   snap.Capacity,
	}
}

// SetContextSize applies a new capacity to the channel and returns the
// user-facing confirmation or rejection. Negative sizes mutate nothing.
func (b *Bot) SetContextSize(channelID string, size int) string {
	if err := b.store.SetCapacity(channelID, size); err != nil {
		return "Context size must be 0 or greater."
	}
	return fmt.Sprintf("Context size set to %d.", size)
}

// ClearContext empties the channel's window and returns the confirmation.
func (b *Bot) ClearContext(channelID string) string {
	b.store.Clear(channelID)
	return "Context cleared."
}
