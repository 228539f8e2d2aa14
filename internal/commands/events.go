package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/chipbot/internal/chat"
)

// DisplayName prefers the guild nickname, then the global name, then the username.
func DisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func interactionUser(i *discordgo.InteractionCreate) (string, string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, DisplayName(i.Member, i.Member.User)
	}
	if i.User != nil {
		return i.User.ID, DisplayName(nil, i.User)
	}
	return "", ""
}

// CommandEvent converts a slash command interaction.
func CommandEvent(i *discordgo.InteractionCreate) chat.Command {
	data := i.ApplicationCommandData()
	id, name := interactionUser(i)

	var args string
	for _, opt := range data.Options {
		if opt.Name == "amount" {
			args = opt.StringValue()
		}
	}

	return chat.Command{Name: data.Name, UserID: id, UserName: name, Args: args}
}

// OptionEvent converts a button click.
func OptionEvent(i *discordgo.InteractionCreate) chat.OptionSelected {
	id, name := interactionUser(i)
	return chat.OptionSelected{UserID: id, UserName: name, Payload: i.MessageComponentData().CustomID}
}

// MessageEvent converts a plain channel message. ok is false for messages
// the bot should never treat as replies.
func MessageEvent(m *discordgo.MessageCreate) (chat.TextReply, bool) {
	if m.Author == nil || m.Author.Bot {
		return chat.TextReply{}, false
	}
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return chat.TextReply{}, false
	}
	return chat.TextReply{
		UserID:   m.Author.ID,
		UserName: DisplayName(m.Member, m.Author),
		Text:     content,
	}, true
}
