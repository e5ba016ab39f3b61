package discord

import "github.com/bwmarrin/discordgo"

// adminCommands returns the slash commands operating on the context store.
func adminCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "view-context",
			Description: "Display the current context",
		},
		{
			Name:        "set-context",
			Description: "Set the number of messages in context",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "size",
					Description: "Number of messages to keep in context",
					Required:    true,
				},
			},
		},
		{
			Name:        "clear-context",
			Description: "Clear the current context",
		},
	}
}
