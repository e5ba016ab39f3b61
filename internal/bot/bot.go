// Package bot wires the response policy, context store, and model provider
// into the message-handling flow, and hosts the admin command handlers.
package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mivora/geminibot/internal/convo"
	"github.com/mivora/geminibot/internal/model"
	"github.com/mivora/geminibot/internal/policy"
)

// maxReplyChars is the platform's per-message limit; longer model output is
// split into contiguous chunks of at most this many characters.
const maxReplyChars = 2000

// imagePlaceholderText is recorded as a user turn when a message carried an
// accepted image, so the window reflects that something non-textual happened.
const imagePlaceholderText = "User sent an image"

// User-facing replies for classified invocation failures.
const (
	safetyReply    = "I'm sorry, but I couldn't generate a response due to safety concerns. Let's try a different topic!"
	rateLimitReply = "I'm currently receiving too many requests. Please try again later."
	genericReply   = "An error occurred while processing your request. Please try again later."
)

// Invocation outcome labels recorded to the ledger.
const (
	OutcomeOK            = "ok"
	OutcomeSafetyBlocked = "safety_blocked"
	OutcomeRateLimited   = "rate_limited"
	OutcomeError         = "error"
)

// Replier sends reply messages back to the originating channel.
type Replier interface {
	Reply(channelID, messageID, text string) error
}

// Fetcher downloads attachment bytes.
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Recorder persists invocation outcomes for operability.
type Recorder interface {
	RecordInvocation(channelID, outcome string, latency time.Duration, promptChars, replyChars int) error
}

// Bot is the message dispatcher. It owns no platform connection; the
// platform adapter feeds it neutral inbound messages and narrow callbacks.
type Bot struct {
	log      *zap.Logger
	store    *convo.Store
	gate     *policy.Gate
	provider model.Provider
	fetcher  Fetcher
	recorder Recorder
	preamble string
}

// New creates a dispatcher around the given collaborators.
func New(log *zap.Logger, store *convo.Store, gate *policy.Gate, provider model.Provider, fetcher Fetcher, recorder Recorder, preamble string) *Bot {
	return &Bot{
		log:      log,
		store:    store,
		gate:     gate,
		provider: provider,
		fetcher:  fetcher,
		recorder: recorder,
		preamble: preamble,
	}
}

// HandleMessage processes one inbound channel message end to end: gate,
// record the user turn, invoke the model, and reply. All failures are
// converted into at most one user-facing reply; none propagate.
func (b *Bot) HandleMessage(ctx context.Context, msg policy.Inbound, r policy.Resolver, rep Replier) {
	decision, err := b.gate.Evaluate(msg, r)
	if err != nil {
		// Could not resolve the reply chain; drop the event.
		b.log.Warn("dropping message, policy evaluation failed",
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err))
		return
	}
	if !decision.Respond {
		return
	}

	var img *model.Image
	if decision.Image != nil {
		data, err := b.fetcher.Download(ctx, decision.Image.URL)
		if err != nil {
			b.log.Error("attachment fetch failed",
				zap.String("channel_id", msg.ChannelID),
				zap.String("url", decision.Image.URL),
				zap.Error(err))
			b.reply(rep, msg, genericReply)
			return
		}
		img = &model.Image{MIMEType: decision.Image.ContentType, Data: data}
		b.store.AppendTurn(msg.ChannelID, convo.RoleUser, imagePlaceholderText)
	}

	b.store.AppendTurn(msg.ChannelID, convo.RoleUser, msg.Text)

	snap := b.store.Get(msg.ChannelID)
	prompt := convo.RenderPrompt(b.preamble, snap.Turns)

	start := time.Now()
	text, err := b.provider.Generate(ctx, prompt, img)
	latency := time.Since(start)
	if err != nil {
		outcome, apology := classifyFailure(err)
		b.log.Error("model invocation failed",
			zap.String("channel_id", msg.ChannelID),
			zap.String("outcome", outcome),
			zap.Error(err))
		b.record(msg.ChannelID, outcome, latency, len(prompt), 0)
		// The user turn stays in the window; the failed exchange adds no
		// model turn.
		b.reply(rep, msg, apology)
		return
	}

	b.store.AppendTurn(msg.ChannelID, convo.RoleModel, text)
	b.record(msg.ChannelID, OutcomeOK, latency, len(prompt), len(text))

	for _, chunk := range chunkText(text, maxReplyChars) {
		if err := rep.Reply(msg.ChannelID, msg.MessageID, chunk); err != nil {
			b.log.Error("reply send failed",
				zap.String("channel_id", msg.ChannelID),
				zap.Error(err))
			return
		}
	}
}

// reply sends a single message, logging (and swallowing) send failures.
func (b *Bot) reply(rep Replier, msg policy.Inbound, text string) {
	if err := rep.Reply(msg.ChannelID, msg.MessageID, text); err != nil {
		b.log.Error("reply send failed",
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err))
	}
}

// record writes one ledger row, logging (and swallowing) write failures.
func (b *Bot) record(channelID, outcome string, latency time.Duration, promptChars, replyChars int) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.RecordInvocation(channelID, outcome, latency, promptChars, replyChars); err != nil {
		b.log.Error("ledger write failed",
			zap.String("channel_id", channelID),
			zap.Error(err))
	}
}

// classifyFailure maps an invocation error to a ledger outcome and the
// user-facing apology to send in place of model text.
func classifyFailure(err error) (outcome, apology string) {
	switch {
	case errors.Is(err, model.ErrSafetyBlocked):
		return OutcomeSafetyBlocked, safetyReply
	case errors.Is(err, model.ErrRateLimited):
		return OutcomeRateLimited, rateLimitReply
	default:
		return OutcomeError, genericReply
	}
}
