package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func sessionWithBotUser(id string) *discordgo.Session {
	st := discordgo.NewState()
	st.User = &discordgo.User{ID: id, Bot: true}
	return &discordgo.Session{State: st}
}

func TestInboundFromMessage_Mapping(t *testing.T) {
	s := sessionWithBotUser("bot1")
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "u1", Bot: false},
		Mentions:  []*discordgo.User{{ID: "bot1"}},
		MessageReference: &discordgo.MessageReference{
			MessageID: "m0",
			ChannelID: "c1",
		},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "http://x/pic.png", ContentType: "image/png"},
		},
	}}

	got := inboundFromMessage(s, m)
	if got.ChannelID != "c1" || got.MessageID != "m1" || got.Text != "hello" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.AuthorIsBot {
		t.Error("expected AuthorIsBot=false")
	}
	if !got.MentionsBot {
		t.Error("expected MentionsBot=true")
	}
	if got.ReplyToID != "m0" {
		t.Errorf("expected ReplyToID m0, got %q", got.ReplyToID)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].ContentType != "image/png" {
		t.Errorf("unexpected attachments: %+v", got.Attachments)
	}
}

func TestInboundFromMessage_OtherMentionIsNotBotMention(t *testing.T) {
	s := sessionWithBotUser("bot1")
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "hey @someone",
		Author:    &discordgo.User{ID: "u1"},
		Mentions:  []*discordgo.User{{ID: "u2"}},
	}}

	if inboundFromMessage(s, m).MentionsBot {
		t.Fatal("expected MentionsBot=false")
	}
}

func TestInboundFromMessage_BotAuthor(t *testing.T) {
	s := sessionWithBotUser("bot1")
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "self echo",
		Author:    &discordgo.User{ID: "bot1", Bot: true},
	}}

	if !inboundFromMessage(s, m).AuthorIsBot {
		t.Fatal("expected AuthorIsBot=true")
	}
}

func TestAdminCommands_Shape(t *testing.T) {
	cmds := adminCommands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	byName := map[string]*discordgo.ApplicationCommand{}
	for _, c := range cmds {
		byName[c.Name] = c
	}
	set, ok := byName["set-context"]
	if !ok {
		t.Fatal("missing set-context command")
	}
	if len(set.Options) != 1 || set.Options[0].Name != "size" || !set.Options[0].Required {
		t.Fatalf("unexpected set-context options: %+v", set.Options)
	}
	if _, ok := byName["view-context"]; !ok {
		t.Error("missing view-context command")
	}
	if _, ok := byName["clear-context"]; !ok {
		t.Error("missing clear-context command")
	}
}
