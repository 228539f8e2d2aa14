package ledger

import "github.com/shopspring/decimal"

type TransferKind string

const (
	Send    TransferKind = "send"
	Receive TransferKind = "receive"
)

// Transfer is one side of a chip transfer between two players.
type Transfer struct {
	Kind             TransferKind    `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	Counterparty     string          `json:"counterparty"`
	CounterpartyName string          `json:"counterparty_name"`
}

type Player struct {
	ID         string
	Name       string
	BuyIn      decimal.Decimal
	Transfers  []Transfer
	FinalChips *decimal.Decimal
}

// EffectiveBuyIn folds the transfer log over the registered buy-in.
func (p *Player) EffectiveBuyIn() decimal.Decimal {
	eff := p.BuyIn
	for _, t := range p.Transfers {
		switch t.Kind {
		case Send:
			eff = eff.Sub(t.Amount)
		case Receive:
			eff = eff.Add(t.Amount)
		}
	}
	return eff
}

type Balance struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

func (b Balance) Owes() bool {
	return b.Amount.IsNegative()
}

// PlayerView is a detached copy of a player for rendering.
type PlayerView struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	BuyIn          decimal.Decimal  `json:"buy_in"`
	EffectiveBuyIn decimal.Decimal  `json:"effective_buy_in"`
	FinalChips     *decimal.Decimal `json:"final_chips,omitempty"`
	Transfers      []Transfer       `json:"transfers"`
}
