package workflow

import (
	"fmt"

	"github.com/susu3304/chipbot/internal/chat"
	"github.com/susu3304/chipbot/internal/ledger"
)

// TransferPayloadPrefix tags recipient buttons offered by Start.
const TransferPayloadPrefix = "transfer_to|"

// TransferWorkflow walks a user through picking a recipient and an amount.
type TransferWorkflow struct {
	ledger  *ledger.Ledger
	pending *Store
}

func NewTransferWorkflow(l *ledger.Ledger, pending *Store) *TransferWorkflow {
	return &TransferWorkflow{ledger: l, pending: pending}
}

func (w *TransferWorkflow) Start(initiatorID string) (chat.Response, error) {
	var options []chat.Option
	for _, p := range w.ledger.Snapshot() {
		if p.ID == initiatorID {
			continue
		}
		options = append(options, chat.Option{Label: p.Name, Payload: TransferPayloadPrefix + p.ID})
	}
	if len(options) == 0 {
		return chat.Notice("There are no other players to transfer chips to."), nil
	}
	w.pending.Put(initiatorID, Pending{Kind: TransferFlow, Step: SelectingRecipient})
	return chat.PromptWithOptions("Please select the person you want to transfer chips to:", options...), nil
}

func (w *TransferWorkflow) Select(initiatorID, recipientID string) (chat.Response, error) {
	cur, ok := w.pending.Get(initiatorID)
	if !ok || cur.Kind != TransferFlow || cur.Step != SelectingRecipient {
		return chat.Response{}, fmt.Errorf("%w: please use /transfer to start a transfer", ledger.ErrInvalidSelection)
	}
	if recipientID == initiatorID {
		return chat.Response{}, fmt.Errorf("%w: you cannot transfer chips to yourself", ledger.ErrInvalidSelection)
	}
	recipient, ok := w.ledger.Player(recipientID)
	if !ok {
		return chat.Response{}, fmt.Errorf("%w: that player is no longer in the game", ledger.ErrInvalidSelection)
	}

	next := Pending{
		Kind:          TransferFlow,
		Step:          AwaitingAmount,
		RecipientID:   recipient.ID,
		RecipientName: recipient.Name,
		Round:         w.ledger.Round(),
	}
	if !w.pending.Advance(initiatorID, SelectingRecipient, next) {
		return chat.Response{}, fmt.Errorf("%w: please use /transfer to start a transfer", ledger.ErrInvalidSelection)
	}
	return chat.Prompt(fmt.Sprintf("Selected %s. Please send the amount to transfer as a message.", recipient.Name)), nil
}

// Amount applies the transfer. A malformed amount leaves the user at the
// amount step so they can retry.
func (w *TransferWorkflow) Amount(initiatorID, text string) (chat.Response, error) {
	amount, err := ledger.ParsePositiveAmount(text)
	if err != nil {
		return chat.Response{}, err
	}
	cur, ok := w.pending.Take(initiatorID, TransferFlow, AwaitingAmount)
	if !ok {
		return chat.Response{}, fmt.Errorf("%w: please use /transfer to start a transfer", ledger.ErrInvalidSelection)
	}
	if err := w.ledger.ApplyTransferInRound(cur.Round, initiatorID, cur.RecipientID, amount); err != nil {
		return chat.Response{}, err
	}
	sender, _ := w.ledger.Player(initiatorID)
	return chat.Notice(fmt.Sprintf("%s transferred $%s to %s", sender.Name, amount.String(), cur.RecipientName)), nil
}
