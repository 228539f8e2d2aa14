package commands

import "github.com/bwmarrin/discordgo"

// GetCommands returns the slash commands registered in every guild.
func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "start",
			Description: "Greet the bot and choose the game type",
		},
		{
			Name:        "help",
			Description: "Show the available commands",
		},
		{
			Name:        "buy_in",
			Description: "Register your buy-in amount",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to buy in; you will be asked if omitted",
					Required:    false,
				},
			},
		},
		{
			Name:        "transfer",
			Description: "Transfer chips to another player",
		},
		{
			Name:        "add_final_chips",
			Description: "Add your final chip count",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Your chip count; you will be asked if omitted",
					Required:    false,
				},
			},
		},
		{
			Name:        "settle",
			Description: "Calculate and display the settlements",
		},
		{
			Name:        "game_state",
			Description: "Display the current effective buy-ins of all players",
		},
		{
			Name:        "cancel",
			Description: "Cancel the step you are in",
		},
	}
}
