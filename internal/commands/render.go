package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/chipbot/internal/chat"
)

const (
	maxContentLength = 2000
	buttonsPerRow    = 5
	rowsPerMessage   = 5
)

// Message is one Discord message ready to send.
type Message struct {
	Content    string
	Components []discordgo.MessageComponent
}

// Render turns controller replies into Discord messages. Long text is split
// on line boundaries, and buttons ride on the last chunk of their reply. Option
// lists that overflow one message continue in follow-up messages.
func Render(responses []chat.Response) []Message {
	var out []Message
	for _, r := range responses {
		chunks := splitContent(r.Text)
		for idx, chunk := range chunks {
			msg := Message{Content: chunk}
			if idx == len(chunks)-1 && r.Kind == chat.KindPromptWithOptions {
				groups := optionGroups(r.Options)
				if len(groups) > 0 {
					msg.Components = Components(groups[0])
				}
				out = append(out, msg)
				for _, g := range groups[1:] {
					out = append(out, Message{Content: "More options:", Components: Components(g)})
				}
				continue
			}
			out = append(out, msg)
		}
	}
	return out
}

// Components lays options out as rows of buttons. The option payload becomes
// the button's custom id.
func Components(opts []chat.Option) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(opts); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(opts))
		var buttons []discordgo.MessageComponent
		for _, o := range opts[start:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    o.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: o.Payload,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func optionGroups(opts []chat.Option) [][]chat.Option {
	const perMessage = buttonsPerRow * rowsPerMessage
	var groups [][]chat.Option
	for start := 0; start < len(opts); start += perMessage {
		end := min(start+perMessage, len(opts))
		groups = append(groups, opts[start:end])
	}
	return groups
}

func splitContent(text string) []string {
	if len(text) <= maxContentLength {
		return []string{text}
	}

	var chunks []string
	var buffer strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxContentLength {
			if buffer.Len() > 0 {
				chunks = append(chunks, buffer.String())
				buffer.Reset()
			}
			chunks = append(chunks, line[:maxContentLength])
			line = line[maxContentLength:]
		}
		if buffer.Len() > 0 && buffer.Len()+len(line)+1 > maxContentLength {
			chunks = append(chunks, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
	}
	if buffer.Len() > 0 {
		chunks = append(chunks, buffer.String())
	}
	return chunks
}
