// Package discord adapts the Discord gateway to the dispatcher's
// platform-neutral types: inbound messages, reply sending, slash command
// registration, and ephemeral admin responses.
package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/mivora/geminibot/internal/bot"
	"github.com/mivora/geminibot/internal/policy"
)

// Gateway owns the Discord session and feeds events to the dispatcher.
type Gateway struct {
	session *discordgo.Session
	bot     *bot.Bot
	log     *zap.Logger
}

// NewGateway creates a gateway for the given bot token. The session is not
// connected until Open is called.
func NewGateway(token string, b *bot.Bot, log *zap.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	g := &Gateway{session: session, bot: b, log: log}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onMessageCreate)
	session.AddHandler(g.onInteractionCreate)
	return g, nil
}

// Open connects to the gateway and starts receiving events.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close stops receiving events. In-flight handlers are not aborted.
func (g *Gateway) Close() error {
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.log.Info("logged in", zap.String("username", r.User.Username))
	for _, cmd := range adminCommands() {
		if _, err := s.ApplicationCommandCreate(r.User.ID, "", cmd); err != nil {
			g.log.Error("failed to register command",
				zap.String("command", cmd.Name),
				zap.Error(err))
		}
	}
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := inboundFromMessage(s, m)
	r := &resolver{session: s, botID: botUserID(s)}
	g.bot.HandleMessage(context.Background(), msg, r, &replier{session: s})
}

func (g *Gateway) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "view-context":
		view := g.bot.ViewContext(i.ChannelID)
		g.respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Current Context",
			Description: view.Transcript,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Current context size", Value: strconv.Itoa(view.Length), Inline: true},
				{Name: "Max context size", Value: strconv.Itoa(view.Capacity), Inline: true},
			},
		})
	case "set-context":
		if len(data.Options) == 0 {
			g.respondText(s, i, "Missing required option: size.")
			return
		}
		size := data.Options[0].IntValue()
		g.respondText(s, i, g.bot.SetContextSize(i.ChannelID, int(size)))
	case "clear-context":
		g.respondText(s, i, g.bot.ClearContext(i.ChannelID))
	}
}

// respondText sends an ephemeral text response to an interaction.
func (g *Gateway) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.log.Error("failed to respond to interaction", zap.Error(err))
	}
}

// respondEmbed sends an ephemeral embed response to an interaction.
func (g *Gateway) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.log.Error("failed to respond to interaction", zap.Error(err))
	}
}

// botUserID returns the connected bot user's ID, or "" before ready.
func botUserID(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.ID
	}
	return ""
}

// inboundFromMessage converts a gateway message event into the dispatcher's
// neutral form.
func inboundFromMessage(s *discordgo.Session, m *discordgo.MessageCreate) policy.Inbound {
	msg := policy.Inbound{
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorIsBot: m.Author != nil && m.Author.Bot,
		Text:        m.Content,
	}

	botID := botUserID(s)
	for _, u := range m.Mentions {
		if botID != "" && u.ID == botID {
			msg.MentionsBot = true
			break
		}
	}
	if ref := m.MessageReference; ref != nil && ref.MessageID != "" {
		msg.ReplyToID = ref.MessageID
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, policy.Attachment{
			URL:         a.URL,
			ContentType: a.ContentType,
		})
	}
	return msg
}

// resolver answers reply-chain lookups against the platform.
type resolver struct {
	session *discordgo.Session
	botID   string
}

func (r *resolver) AuthoredByBot(channelID, messageID string) (bool, error) {
	ref, err := r.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch referenced message: %w", err)
	}
	return ref.Author != nil && ref.Author.ID == r.botID, nil
}

// replier sends in-channel replies to the triggering message.
type replier struct {
	session *discordgo.Session
}

func (r *replier) Reply(channelID, messageID, text string) error {
	_, err := r.session.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
