package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/chat"
	"github.com/susu3304/chipbot/internal/db"
	"github.com/susu3304/chipbot/internal/ledger"
	"github.com/susu3304/chipbot/internal/workflow"
)

const gameTypePayloadPrefix = "game_type|"

const helpText = "/buy_in - Register your buy-in amount\n" +
	"/transfer - Transfer chips to another player\n" +
	"/add_final_chips - Add your final chip count\n" +
	"/settle - Calculate and display the settlements\n" +
	"/game_state - Calculate and display the current effective buy-ins of all players\n" +
	"/cancel - Cancel the step you are in\n"

// Archive stores finished settlements. It is optional.
type Archive interface {
	SaveSettlement(ctx context.Context, s db.Settlement) error
}

// Controller routes chat events to the ledger workflows.
type Controller struct {
	mu   sync.Mutex
	game GameSession

	ledger    *ledger.Ledger
	pending   *workflow.Store
	transfers *workflow.TransferWorkflow
	entries   *workflow.EntryWorkflow
	archive   Archive
	clock     quartz.Clock
	logger    *zap.Logger
}

func New(l *ledger.Ledger, pending *workflow.Store, clock quartz.Clock, logger *zap.Logger, archive Archive) *Controller {
	return &Controller{
		game:      GameSession{Phase: PhaseAwaitingType},
		ledger:    l,
		pending:   pending,
		transfers: workflow.NewTransferWorkflow(l, pending),
		entries:   workflow.NewEntryWorkflow(l, pending),
		archive:   archive,
		clock:     clock,
		logger:    logger.Named("session"),
	}
}

// Dispatch handles one inbound event and returns the replies to deliver.
func (c *Controller) Dispatch(ctx context.Context, ev chat.Event) []chat.Response {
	switch e := ev.(type) {
	case chat.Command:
		return c.handleCommand(ctx, e)
	case chat.TextReply:
		return c.handleText(e)
	case chat.OptionSelected:
		return c.handleOption(e)
	}
	return nil
}

func (c *Controller) handleCommand(ctx context.Context, cmd chat.Command) []chat.Response {
	switch cmd.Name {
	case "start":
		return []chat.Response{
			chat.Notice(fmt.Sprintf("Hi %s! I'm your poker group's bot. Use /help to see a list of available commands.", cmd.UserName)),
			chat.PromptWithOptions("Please select the game type:",
				chat.Option{Label: "Cash Game", Payload: gameTypePayloadPrefix + "cash"},
				chat.Option{Label: "Tournament", Payload: gameTypePayloadPrefix + "tournament"},
			),
		}
	case "help":
		return []chat.Response{chat.Notice(helpText)}
	case "buy_in":
		prompt := c.entries.StartBuyIn(cmd.UserID)
		if strings.TrimSpace(cmd.Args) == "" {
			return []chat.Response{prompt}
		}
		return c.completeBuyIn(cmd.UserID, cmd.UserName, cmd.Args)
	case "add_final_chips":
		prompt := c.entries.StartFinalChips(cmd.UserID)
		if strings.TrimSpace(cmd.Args) == "" {
			return []chat.Response{prompt}
		}
		return c.completeFinalChips(cmd.UserID, cmd.Args)
	case "transfer":
		resp, err := c.transfers.Start(cmd.UserID)
		if err != nil {
			return c.fail(cmd.UserID, "transfer", err, "")
		}
		return []chat.Response{resp}
	case "settle":
		return c.RunSettlement(ctx)
	case "game_state":
		return []chat.Response{c.RenderGameState()}
	case "cancel":
		if c.pending.Clear(cmd.UserID) {
			c.logger.Debug("pending step cancelled", zap.String("user_id", cmd.UserID))
			return []chat.Response{chat.Notice("Ending the conversation.")}
		}
		return []chat.Response{chat.Notice("There is nothing to cancel.")}
	}
	return []chat.Response{chat.Notice("Unknown command. Use /help to see a list of available commands.")}
}

func (c *Controller) handleText(r chat.TextReply) []chat.Response {
	p, ok := c.pending.Get(r.UserID)
	if !ok {
		return nil
	}
	switch p.Kind {
	case workflow.TransferFlow:
		if p.Step != workflow.AwaitingAmount {
			return []chat.Response{chat.Notice("Please pick a recipient from the buttons, or use /cancel.")}
		}
		resp, err := c.transfers.Amount(r.UserID, r.Text)
		if err != nil {
			hint := ""
			if errors.Is(err, ledger.ErrParse) {
				hint = "Please send the amount again, or use /cancel."
			}
			return c.fail(r.UserID, "transfer", err, hint)
		}
		c.logger.Info("transfer applied", zap.String("from", r.UserID), zap.String("to", p.RecipientID), zap.String("amount", strings.TrimSpace(r.Text)))
		return []chat.Response{resp}
	case workflow.BuyInFlow:
		return c.completeBuyIn(r.UserID, r.UserName, r.Text)
	case workflow.FinalChipsFlow:
		return c.completeFinalChips(r.UserID, r.Text)
	}
	return nil
}

func (c *Controller) completeBuyIn(userID, name, text string) []chat.Response {
	resp, err := c.entries.CompleteBuyIn(userID, name, text)
	if err != nil {
		return c.fail(userID, "buy_in", err, "Please use /buy_in to try again.")
	}
	c.logger.Info("buy-in registered", zap.String("user_id", userID), zap.String("amount", strings.TrimSpace(text)))
	c.mu.Lock()
	if c.game.Phase == PhaseAwaitingType || c.game.Phase == PhaseSettled {
		c.game.Phase = PhaseOpen
	}
	c.mu.Unlock()
	return []chat.Response{resp}
}

func (c *Controller) completeFinalChips(userID, text string) []chat.Response {
	resp, err := c.entries.CompleteFinalChips(userID, text)
	if err != nil {
		return c.fail(userID, "final_chips", err, "Please use /add_final_chips to try again.")
	}
	c.logger.Info("final chips recorded", zap.String("user_id", userID), zap.String("amount", strings.TrimSpace(text)))
	c.mu.Lock()
	c.game.Phase = PhaseSettling
	c.mu.Unlock()
	return []chat.Response{resp}
}

func (c *Controller) handleOption(o chat.OptionSelected) []chat.Response {
	switch {
	case strings.HasPrefix(o.Payload, gameTypePayloadPrefix):
		gt, ok := ParseGameType(strings.TrimPrefix(o.Payload, gameTypePayloadPrefix))
		if !ok {
			return c.fail(o.UserID, "game_type", fmt.Errorf("%w: unknown game type", ledger.ErrInvalidSelection), "")
		}
		c.SelectGameType(gt)
		return []chat.Response{chat.Notice(fmt.Sprintf("Game type set to %s", gt.Label()))}
	case strings.HasPrefix(o.Payload, workflow.TransferPayloadPrefix):
		resp, err := c.transfers.Select(o.UserID, strings.TrimPrefix(o.Payload, workflow.TransferPayloadPrefix))
		if err != nil {
			return c.fail(o.UserID, "transfer", err, "")
		}
		return []chat.Response{resp}
	}
	return c.fail(o.UserID, "option", fmt.Errorf("%w: unrecognised option", ledger.ErrInvalidSelection), "")
}

// SelectGameType sets the game type; later calls overwrite earlier ones.
func (c *Controller) SelectGameType(gt GameType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.game.GameType = gt
	if c.game.Phase == PhaseAwaitingType {
		c.game.Phase = PhaseOpen
	}
	c.logger.Info("game type selected", zap.String("game_type", string(gt)))
}

func (c *Controller) Game() GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

func (c *Controller) State() State {
	g := c.Game()
	return State{GameType: g.GameType, Phase: g.Phase, Players: c.ledger.Snapshot()}
}

func (c *Controller) fail(userID, flow string, err error, hint string) []chat.Response {
	c.logger.Warn("request rejected", zap.String("user_id", userID), zap.String("flow", flow), zap.Error(err))
	msg := "Error: " + err.Error() + "."
	if hint != "" {
		msg += " " + hint
	}
	return []chat.Response{chat.Notice(msg)}
}
