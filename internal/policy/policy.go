// Package policy decides whether the bot should answer an inbound message
// and which attachment, if any, is eligible for the model request.
package policy

import (
	"fmt"
	"strings"
)

// Attachment is the platform-declared metadata of one uploaded file.
type Attachment struct {
	URL         string
	ContentType string
}

// Inbound is a platform-neutral inbound channel message.
type Inbound struct {
	ChannelID   string
	MessageID   string
	AuthorIsBot bool
	Text        string
	MentionsBot bool
	ReplyToID   string
	Attachments []Attachment
}

// Resolver reports whether a referenced message was authored by this bot.
// Resolution is a blocking lookup against the platform.
type Resolver interface {
	AuthoredByBot(channelID, messageID string) (bool, error)
}

// Decision is the outcome of gating one inbound message.
type Decision struct {
	Respond bool
	// Image is the single eligible image attachment, nil when the message
	// carried none (or only attachments outside the allow-list).
	Image *Attachment
}

// Gate evaluates inbound messages against the response policy.
type Gate struct {
	botName string
	allowed map[string]bool
}

// NewGate creates a Gate for the given bot display name and image MIME type
// allow-list.
func NewGate(botName string, allowedImageTypes []string) *Gate {
	allowed := make(map[string]bool, len(allowedImageTypes))
	for _, mime := range allowedImageTypes {
		allowed[strings.ToLower(mime)] = true
	}
	return &Gate{botName: strings.ToLower(botName), allowed: allowed}
}

// Evaluate decides whether msg deserves a response. The bot responds when it
// is mentioned, when the text contains its name (case-insensitive), or when
// the message replies to one of the bot's own messages. Messages from bots
// never qualify.
func (g *Gate) Evaluate(msg Inbound, r Resolver) (Decision, error) {
	if msg.AuthorIsBot {
		return Decision{}, nil
	}

	respond := msg.MentionsBot || strings.Contains(strings.ToLower(msg.Text), g.botName)
	if !respond && msg.ReplyToID != "" {
		authored, err := r.AuthoredByBot(msg.ChannelID, msg.ReplyToID)
		if err != nil {
			return Decision{}, fmt.Errorf("resolve replied-to message %s: %w", msg.ReplyToID, err)
		}
		respond = authored
	}
	if !respond {
		return Decision{}, nil
	}

	d := Decision{Respond: true}
	if len(msg.Attachments) > 0 {
		// Only the first attachment is considered; non-image attachments are
		// ignored, not an error.
		first := msg.Attachments[0]
		if g.allowed[strings.ToLower(first.ContentType)] {
			d.Image = &first
		}
	}
	return d, nil
}
