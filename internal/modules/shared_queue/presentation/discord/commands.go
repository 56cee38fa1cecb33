package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the shared queue module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "queue",
			Description: "Share a queue with your friends",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create your queue, or show it if you already have one",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show a queue",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a track to a queue",
					Options: []*discordgo.ApplicationCommandOption{
						queueOption(),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Track ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Track name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "uri",
							Description: "Track URI",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "duration_ms",
							Description: "Track length in milliseconds",
							Required:    false,
							MinValue:    floatPtr(0),
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "artists",
							Description: "Comma-separated artist names",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "artwork_url",
							Description: "Cover image URL",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a track from a queue",
					Options:     []*discordgo.ApplicationCommandOption{queueOption(), trackOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move a track to another position",
					Options: []*discordgo.ApplicationCommandOption{
						queueOption(),
						trackOption(),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "position",
							Description: "New position (1 = now playing)",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "next",
					Description: "Show which track plays after a given track",
					Options:     []*discordgo.ApplicationCommandOption{queueOption(), trackOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "skip",
					Description: "Finish the current track",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "pause",
					Description: "Pause playback",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Resume playback",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "seek",
					Description: "Seek within the current track",
					Options: []*discordgo.ApplicationCommandOption{
						queueOption(),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "position",
							Description: "Position (e.g., 1:30, 90)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join a queue",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave a queue",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "kick",
					Description: "Remove a participant from your queue",
					Options: []*discordgo.ApplicationCommandOption{
						queueOption(),
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Participant to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete your queue",
					Options:     []*discordgo.ApplicationCommandOption{queueOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "friends",
					Description: "List queues created by your friends",
				},
			},
		},
	}
}

func queueOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "queue",
		Description: "Queue ID",
		Required:    true,
	}
}

func trackOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "track",
		Description: "Track ID",
		Required:    true,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
