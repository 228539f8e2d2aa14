package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/chipbot/internal/commands"
)

const (
	sendAttemptTimeout = 12 * time.Second
	sendMaxAttempts    = 2
)

// replyInteraction answers an interaction with the first message and posts
// the rest as follow-ups.
func (b *Bot) replyInteraction(i *discordgo.Interaction, msgs []commands.Message) error {
	if len(msgs) == 0 {
		return b.api.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}

	first := msgs[0]
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    first.Content,
			Components: first.Components,
		},
	})
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	for _, m := range msgs[1:] {
		_, err := b.api.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content:    m.Content,
			Components: m.Components,
		})
		if err != nil {
			return fmt.Errorf("follow-up: %w", err)
		}
	}
	return nil
}

func (b *Bot) sendToChannel(ctx context.Context, channelID string, msgs []commands.Message) error {
	for _, m := range msgs {
		if err := b.sendWithRetry(ctx, channelID, m); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendWithRetry(ctx context.Context, channelID string, m commands.Message) error {
	var lastErr error
	for attempt := 1; attempt <= sendMaxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, sendAttemptTimeout)
		_, err := b.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content:    m.Content,
			Components: m.Components,
		}, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) {
			return err
		}
		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
