package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/commands"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("connected", zap.String("user", event.User.Username))

	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.logger.Error("failed to register commands", zap.String("guild_id", guild.ID), zap.Error(err))
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.logger.Info("guild available", zap.String("guild", event.Name), zap.String("guild_id", event.ID))
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.logger.Error("failed to register commands", zap.String("guild_id", event.ID), zap.Error(err))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(m)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(i)
}

func (b *Bot) handleMessage(m *discordgo.MessageCreate) {
	ev, ok := commands.MessageEvent(m)
	if !ok {
		return
	}
	msgs := commands.Render(b.dispatcher.Dispatch(b.ctx, ev))
	if len(msgs) == 0 {
		return
	}
	if err := b.sendToChannel(b.ctx, m.ChannelID, msgs); err != nil {
		b.logger.Error("failed to send reply", zap.String("channel_id", m.ChannelID), zap.Error(err))
	}
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		ev := commands.CommandEvent(i)
		b.logger.Debug("command received", zap.String("command", ev.Name), zap.String("user_id", ev.UserID))
		b.reply(i.Interaction, commands.Render(b.dispatcher.Dispatch(b.ctx, ev)))
	case discordgo.InteractionMessageComponent:
		ev := commands.OptionEvent(i)
		b.logger.Debug("option selected", zap.String("payload", ev.Payload), zap.String("user_id", ev.UserID))
		b.reply(i.Interaction, commands.Render(b.dispatcher.Dispatch(b.ctx, ev)))
	}
}

func (b *Bot) reply(i *discordgo.Interaction, msgs []commands.Message) {
	if err := b.replyInteraction(i, msgs); err != nil {
		b.logger.Error("failed to respond to interaction", zap.String("interaction_id", i.ID), zap.Error(err))
	}
}
