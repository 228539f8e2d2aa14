// Package chat defines the transport-neutral events the bot consumes and the
// responses it produces.
package chat

// Event is an inbound message from a chat transport.
type Event interface {
	Initiator() string
}

// Command is a slash command such as /buy_in.
type Command struct {
	Name     string
	UserID   string
	UserName string
	Args     string
}

func (c Command) Initiator() string { return c.UserID }

// TextReply is a plain message, used to answer a pending prompt.
type TextReply struct {
	UserID   string
	UserName string
	Text     string
}

func (r TextReply) Initiator() string { return r.UserID }

// OptionSelected is a button click carrying the option's payload.
type OptionSelected struct {
	UserID   string
	UserName string
	Payload  string
}

func (o OptionSelected) Initiator() string { return o.UserID }

type ResponseKind int

const (
	KindNotice ResponseKind = iota
	KindPrompt
	KindPromptWithOptions
)

type Option struct {
	Label   string
	Payload string
}

type Response struct {
	Kind    ResponseKind
	Text    string
	Options []Option
}

func Notice(text string) Response {
	return Response{Kind: KindNotice, Text: text}
}

func Prompt(text string) Response {
	return Response{Kind: KindPrompt, Text: text}
}

func PromptWithOptions(text string, options ...Option) Response {
	return Response{Kind: KindPromptWithOptions, Text: text, Options: options}
}
