package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/chat"
	"github.com/susu3304/chipbot/internal/db"
	"github.com/susu3304/chipbot/internal/ledger"
)

const reportTimeLayout = "2006-01-02 15:04:05"

const archiveTimeout = 10 * time.Second

// RenderGameState lists every player's effective buy-in in registration order.
func (c *Controller) RenderGameState() chat.Response {
	st := c.State()
	if len(st.Players) == 0 {
		return chat.Notice("No data available yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current state of the (%s) game:\n\n", st.GameType.Label())
	for _, p := range st.Players {
		fmt.Fprintf(&b, "%s (ID: %s):\n", p.Name, p.ID)
		fmt.Fprintf(&b, "Effective Buy-in: %s\n", p.EffectiveBuyIn.String())
		if p.FinalChips != nil {
			fmt.Fprintf(&b, "Final chips: %s\n", p.FinalChips.String())
		}
		b.WriteString("\n")
	}
	return chat.Notice(strings.TrimRight(b.String(), "\n"))
}

// RunSettlement reports every player's balance and resets the ledger. If any
// player is missing a final chip count nothing is reset.
func (c *Controller) RunSettlement(ctx context.Context) []chat.Response {
	balances, err := c.ledger.SettleAndReset()
	if err != nil {
		c.logger.Warn("settlement rejected", zap.Error(err))
		return []chat.Response{chat.Notice(incompleteMessage(err))}
	}

	now := c.clock.Now()
	g := c.Game()
	negative, positive := ledger.TotalOwedVsReceived(balances)
	balanced := ledger.ZeroSumHolds(negative, positive)

	var b strings.Builder
	fmt.Fprintf(&b, "Settlements (%s):\n", g.GameType.Label())
	fmt.Fprintf(&b, "Time: %s\n", now.Format(reportTimeLayout))
	fmt.Fprintf(&b, "Number of players: %d\n\n", len(balances))
	for _, bal := range balances {
		b.WriteString(BalanceLine(bal))
		b.WriteString("\n")
	}
	report := chat.Notice(strings.TrimRight(b.String(), "\n"))

	var check chat.Response
	if balanced {
		check = chat.Notice(fmt.Sprintf("The total amount owed ($%s) matches the total amount received ($%s). Net: $%s.",
			ledger.FormatMoney(negative.Neg()), ledger.FormatMoney(positive), ledger.FormatMoney(negative.Add(positive))))
	} else {
		c.logger.Warn("settlement does not add up",
			zap.String("total_owed", negative.String()),
			zap.String("total_received", positive.String()))
		check = chat.Notice(fmt.Sprintf("Error: The total amount owed ($%s) does not match the total amount received ($%s).",
			ledger.FormatMoney(negative.Neg()), ledger.FormatMoney(positive)))
	}

	c.mu.Lock()
	c.game.Phase = PhaseSettled
	c.mu.Unlock()

	c.logger.Info("game settled", zap.Int("players", len(balances)), zap.Bool("balanced", balanced))
	c.save(ctx, g.GameType, now, balances, negative, positive, balanced)
	return []chat.Response{report, check}
}

// BalanceLine renders "name owes $X" or "name receives $X".
func BalanceLine(b ledger.Balance) string {
	if b.Owes() {
		return fmt.Sprintf("%s owes $%s", b.Name, ledger.FormatMoney(b.Amount.Neg()))
	}
	return fmt.Sprintf("%s receives $%s", b.Name, ledger.FormatMoney(b.Amount))
}

func incompleteMessage(err error) string {
	msg := "Error: Not all players have entered their final chip amounts."
	var incomplete *ledger.IncompleteDataError
	if errors.As(err, &incomplete) && len(incomplete.Missing) > 0 {
		msg += " Waiting on: " + strings.Join(incomplete.Missing, ", ") + "."
	}
	return msg
}

func (c *Controller) save(ctx context.Context, gt GameType, at time.Time, balances []ledger.Balance, negative, positive decimal.Decimal, balanced bool) {
	if c.archive == nil {
		return
	}
	rec := db.Settlement{
		ID:            uuid.New(),
		GameType:      string(gt),
		SettledAt:     at,
		PlayerCount:   len(balances),
		TotalOwed:     negative.Neg(),
		TotalReceived: positive,
		Balanced:      balanced,
	}
	for _, b := range balances {
		rec.Balances = append(rec.Balances, db.SettlementBalance{PlayerID: b.ID, Name: b.Name, Amount: b.Amount})
	}

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	if err := c.archive.SaveSettlement(ctx, rec); err != nil {
		c.logger.Error("failed to archive settlement", zap.String("settlement_id", rec.ID.String()), zap.Error(err))
		return
	}
	c.logger.Debug("settlement archived", zap.String("settlement_id", rec.ID.String()))
}
