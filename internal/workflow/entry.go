package workflow

import (
	"fmt"

	"github.com/susu3304/chipbot/internal/chat"
	"github.com/susu3304/chipbot/internal/ledger"
)

// EntryWorkflow collects a single value after a prompt. A malformed reply
// ends the flow; the user has to issue the command again.
type EntryWorkflow struct {
	ledger  *ledger.Ledger
	pending *Store
}

func NewEntryWorkflow(l *ledger.Ledger, pending *Store) *EntryWorkflow {
	return &EntryWorkflow{ledger: l, pending: pending}
}

func (w *EntryWorkflow) StartBuyIn(userID string) chat.Response {
	w.pending.Put(userID, Pending{Kind: BuyInFlow, Step: AwaitingValue})
	return chat.Prompt("Please enter the amount you want to buy in:")
}

func (w *EntryWorkflow) StartFinalChips(userID string) chat.Response {
	w.pending.Put(userID, Pending{Kind: FinalChipsFlow, Step: AwaitingValue})
	return chat.Prompt("Please enter your final chip count:")
}

func (w *EntryWorkflow) CompleteBuyIn(userID, name, text string) (chat.Response, error) {
	if _, ok := w.pending.Take(userID, BuyInFlow, AwaitingValue); !ok {
		return chat.Response{}, fmt.Errorf("%w: please use /buy_in first", ledger.ErrInvalidSelection)
	}
	amount, err := ledger.ParseAmount(text)
	if err != nil {
		return chat.Response{}, err
	}
	p := w.ledger.RegisterBuyIn(userID, name, amount)
	return chat.Notice(fmt.Sprintf("Buy-in of %s registered for %s.", amount.String(), p.Name)), nil
}

func (w *EntryWorkflow) CompleteFinalChips(userID, text string) (chat.Response, error) {
	if _, ok := w.pending.Take(userID, FinalChipsFlow, AwaitingValue); !ok {
		return chat.Response{}, fmt.Errorf("%w: please use /add_final_chips first", ledger.ErrInvalidSelection)
	}
	amount, err := ledger.ParseNonNegativeAmount(text)
	if err != nil {
		return chat.Response{}, err
	}
	if err := w.ledger.SetFinalChips(userID, amount); err != nil {
		return chat.Response{}, err
	}
	p, _ := w.ledger.Player(userID)
	return chat.Notice(fmt.Sprintf("%s's final chips: $%s", p.Name, amount.String())), nil
}
