package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/chat"
	"github.com/susu3304/chipbot/internal/commands"
)

// Dispatcher handles one chat event and returns the replies to deliver.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev chat.Event) []chat.Response
}

// discordAPI is the slice of *discordgo.Session the bot delivers through.
type discordAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	session    *discordgo.Session
	api        discordAPI
	dispatcher Dispatcher
	logger     *zap.Logger
	ctx        context.Context
}

func New(token string, dispatcher Dispatcher, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		api:        session,
		dispatcher: dispatcher,
		logger:     logger.Named("bot"),
		ctx:        context.Background(),
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	return bot, nil
}

// Run connects to Discord and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return b.Stop()
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.logger.Info("closing discord session")
	return b.session.Close()
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	b.logger.Info("registered application commands", zap.String("guild_id", guildID))
	return nil
}
