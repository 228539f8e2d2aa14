package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger holds the players of the single running game.
type Ledger struct {
	mu      sync.RWMutex
	players map[string]*Player
	order   []string
	round   uint64
}

func New() *Ledger {
	return &Ledger{players: make(map[string]*Player)}
}

// RegisterBuyIn adds amount to the player's buy-in, creating the player on
// first use. Repeated calls accumulate.
func (l *Ledger) RegisterBuyIn(id, name string, amount decimal.Decimal) *PlayerView {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		p = &Player{ID: id, Name: name, BuyIn: decimal.Zero}
		l.players[id] = p
		l.order = append(l.order, id)
	}
	p.BuyIn = p.BuyIn.Add(amount)
	v := view(p)
	return &v
}

func (l *Ledger) ApplyTransfer(fromID, toID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyTransfer(fromID, toID, amount)
}

// ApplyTransferInRound applies the transfer only if the ledger has not been
// reset since round was observed.
func (l *Ledger) ApplyTransferInRound(round uint64, fromID, toID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.round != round {
		return fmt.Errorf("%w: the game was settled since this transfer was started", ErrInvalidSelection)
	}
	return l.applyTransfer(fromID, toID, amount)
}

func (l *Ledger) applyTransfer(fromID, toID string, amount decimal.Decimal) error {
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer chips to yourself", ErrInvalidSelection)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrParse)
	}
	from, ok := l.players[fromID]
	if !ok {
		return fmt.Errorf("%w: %s has not bought in", ErrUnknownPlayer, fromID)
	}
	to, ok := l.players[toID]
	if !ok {
		return fmt.Errorf("%w: %s has not bought in", ErrUnknownPlayer, toID)
	}
	from.Transfers = append(from.Transfers, Transfer{Kind: Send, Amount: amount, Counterparty: to.ID, CounterpartyName: to.Name})
	to.Transfers = append(to.Transfers, Transfer{Kind: Receive, Amount: amount, Counterparty: from.ID, CounterpartyName: from.Name})
	return nil
}

// SetFinalChips records the player's end-of-game count. Last write wins.
func (l *Ledger) SetFinalChips(id string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: final chips must not be negative", ErrParse)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[id]
	if !ok {
		return fmt.Errorf("%w: %s has not bought in", ErrUnknownPlayer, id)
	}
	p.FinalChips = &amount
	return nil
}

func (l *Ledger) EffectiveBuyIn(id string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.players[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	return p.EffectiveBuyIn(), nil
}

func (l *Ledger) ComputeSettlement() ([]Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.computeSettlement()
}

// SettleAndReset computes balances and clears the ledger in one critical
// section. On error nothing is reset.
func (l *Ledger) SettleAndReset() ([]Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances, err := l.computeSettlement()
	if err != nil {
		return nil, err
	}
	l.reset()
	return balances, nil
}

func (l *Ledger) computeSettlement() ([]Balance, error) {
	var missing []string
	for _, id := range l.order {
		if l.players[id].FinalChips == nil {
			missing = append(missing, l.players[id].Name)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteDataError{Missing: missing}
	}
	balances := make([]Balance, 0, len(l.order))
	for _, id := range l.order {
		p := l.players[id]
		balances = append(balances, Balance{
			ID:     p.ID,
			Name:   p.Name,
			Amount: p.FinalChips.Sub(p.EffectiveBuyIn()),
		})
	}
	return balances, nil
}

func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

func (l *Ledger) reset() {
	l.players = make(map[string]*Player)
	l.order = nil
	l.round++
}

// Round identifies the current ledger generation; it changes on every reset.
func (l *Ledger) Round() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.round
}

func (l *Ledger) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.players[id]
	return ok
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Snapshot returns copies of all players in registration order.
func (l *Ledger) Snapshot() []PlayerView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]PlayerView, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, view(l.players[id]))
	}
	return out
}

// Player returns a copy of a single player.
func (l *Ledger) Player(id string) (PlayerView, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.players[id]
	if !ok {
		return PlayerView{}, false
	}
	return view(p), true
}

func view(p *Player) PlayerView {
	v := PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		BuyIn:          p.BuyIn,
		EffectiveBuyIn: p.EffectiveBuyIn(),
		Transfers:      append([]Transfer(nil), p.Transfers...),
	}
	if p.FinalChips != nil {
		fc := *p.FinalChips
		v.FinalChips = &fc
	}
	return v
}
