// Package chat orchestrates the conversation loop: model replies, tool
// dispatch, the confirmation gate and the transaction queue.
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Mazzz-zzz/voca.fi/pkg/agent"
	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/settings"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

// SystemPrompt seeds every conversation.
const SystemPrompt = "You are a helpful DeFi assistant operating on the Polygon network. " +
	"You help the user swap POL for other tokens, check token balances and check token prices " +
	"using the tools available to you. Amounts are expressed in base units " +
	"(1 POL = 1000000000000000000). Be concise. Never invent balances, prices or " +
	"transaction results; always use a tool."

// Assistant produces model replies for a conversation history.
type Assistant interface {
	Respond(ctx context.Context, history []agent.Message) (*agent.Reply, error)
}

// Preparer resolves and quotes a swap intent.
type Preparer interface {
	PrepareSwap(ctx context.Context, amountIn, symbolOut string) (*swap.PreparedSwap, error)
}

// ChainReader reads wallet state from the chain.
type ChainReader interface {
	TokenBalance(ctx context.Context, tokenAddress string) (*big.Int, error)
}

// PriceReader fetches token USD prices.
type PriceReader interface {
	GetPrice(ctx context.Context, chainID int64, address string) (*enso.PriceResponse, error)
}

// Config wires a Session.
type Config struct {
	Assistant     Assistant
	Preparer      Preparer
	Queue         *swap.Queue
	Gate          *swap.ConfirmationGate
	Executor      swap.Executor
	Chain         ChainReader
	Prices        PriceReader
	Settings      *settings.Settings
	SettingsStore settings.Store
	ChainID       int64
	Logger        *logrus.Logger
}

// Session is one user conversation. It is the single dispatcher of tool
// commands: nothing executes on-chain except through it.
type Session struct {
	assistant     Assistant
	preparer      Preparer
	queue         *swap.Queue
	gate          *swap.ConfirmationGate
	executor      swap.Executor
	chain         ChainReader
	prices        PriceReader
	settings      *settings.Settings
	settingsStore settings.Store
	chainID       int64
	history       []agent.Message
	log           *logrus.Logger
}

// NewSession creates a session seeded with the system prompt.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Settings == nil {
		cfg.Settings = &settings.Settings{}
	}
	return &Session{
		assistant:     cfg.Assistant,
		preparer:      cfg.Preparer,
		queue:         cfg.Queue,
		gate:          cfg.Gate,
		executor:      cfg.Executor,
		chain:         cfg.Chain,
		prices:        cfg.Prices,
		settings:      cfg.Settings,
		settingsStore: cfg.SettingsStore,
		chainID:       cfg.ChainID,
		history:       []agent.Message{{Role: agent.RoleSystem, Content: SystemPrompt}},
		log:           cfg.Logger,
	}
}

// SendWithoutConfirm reports the current confirmation setting.
func (s *Session) SendWithoutConfirm() bool {
	return s.settings.SendWithoutConfirm
}

// SetSendWithoutConfirm flips the confirmation setting and persists it.
func (s *Session) SetSendWithoutConfirm(v bool) error {
	s.settings.SendWithoutConfirm = v
	if s.settingsStore != nil {
		if err := s.settingsStore.Save(s.settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	return nil
}

// HandleMessage processes one user input and returns the reply to show.
// A bare "ok" or "yes" while a swap is gated executes it without a model
// round trip; everything else goes through the model.
func (s *Session) HandleMessage(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if s.gate.Peek() != nil && swap.IsConfirmation(input) {
		s.appendTurn(input, "")
		return s.executePending(ctx)
	}

	s.history = append(s.history, agent.Message{Role: agent.RoleUser, Content: input})

	reply, err := s.assistant.Respond(ctx, s.history)
	if err != nil {
		// Drop the failed turn so a retry is clean.
		s.history = s.history[:len(s.history)-1]
		return "", err
	}

	if len(reply.Calls) == 0 {
		s.history = append(s.history, agent.Message{Role: agent.RoleAssistant, Content: reply.Text})
		return reply.Text, nil
	}

	var parts []string
	if reply.Text != "" {
		parts = append(parts, reply.Text)
	}
	for _, call := range reply.Calls {
		msg, err := s.dispatch(ctx, call.Command)
		if err != nil {
			return "", err
		}
		parts = append(parts, msg)
	}
	out := strings.Join(parts, "\n")
	s.history = append(s.history, agent.Message{Role: agent.RoleAssistant, Content: out})
	return out, nil
}

func (s *Session) dispatch(ctx context.Context, cmd agent.Command) (string, error) {
	switch c := cmd.(type) {
	case agent.CreateSwapCommand:
		return s.createSwap(ctx, c)
	case agent.ConfirmSwapCommand:
		if c.Confirm {
			return s.executePending(ctx)
		}
		return s.cancelPending()
	case agent.GetTokenBalanceCommand:
		return s.tokenBalance(ctx, c.TokenAddress)
	case agent.GetTokenPriceCommand:
		return s.tokenPrice(ctx, c.TokenAddress)
	}
	return "", fmt.Errorf("unhandled command %T", cmd)
}

// createSwap prepares and enqueues a swap. With confirmation enabled the
// entry waits behind the gate; otherwise it executes immediately.
func (s *Session) createSwap(ctx context.Context, c agent.CreateSwapCommand) (string, error) {
	prepared, err := s.preparer.PrepareSwap(ctx, c.AmountIn, c.SymbolOut)
	if err != nil {
		var notFound *swap.TokenNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Sprintf("I couldn't find a token matching %q on Polygon. Try a different symbol.", notFound.Symbol), nil
		}
		return "", err
	}

	entry := s.queue.Enqueue(swap.SwapArgs{AmountIn: c.AmountIn, SymbolOut: c.SymbolOut}, prepared)

	summary := fmt.Sprintf("Swap %s POL for ~%s %s (price impact -%.2f%%).",
		prepared.FormattedAmountIn, prepared.FormattedAmountOut, prepared.TokenOutSymbol, prepared.PriceImpact)

	if s.settings.SendWithoutConfirm {
		hash, err := s.queue.Execute(ctx, entry.ID, s.executor)
		if err != nil {
			return s.executionFailure(err)
		}
		return summary + "\n" + confirmedMessage(hash), nil
	}

	s.gate.Offer(&swap.PendingSwap{EntryID: entry.ID, Swap: prepared})
	return summary + "\nReply \"ok\" or \"yes\" to execute, or anything else to leave it queued.", nil
}

// executePending releases the gated swap and runs it.
func (s *Session) executePending(ctx context.Context) (string, error) {
	p := s.gate.Take()
	if p == nil {
		return "There is no swap awaiting confirmation.", nil
	}

	hash, err := s.queue.Execute(ctx, p.EntryID, s.executor)
	if err != nil {
		return s.executionFailure(err)
	}
	return confirmedMessage(hash), nil
}

// cancelPending drops the gated swap and its queue entry.
func (s *Session) cancelPending() (string, error) {
	p := s.gate.Take()
	if p == nil {
		return "There is no swap awaiting confirmation.", nil
	}
	if err := s.queue.Delete(p.EntryID); err != nil && !errors.Is(err, swap.ErrNotFound) {
		return "", err
	}
	return "Cancelled. The swap was removed from the queue.", nil
}

func (s *Session) tokenBalance(ctx context.Context, address string) (string, error) {
	if s.chain == nil {
		return "", &swap.ConfigurationError{Reason: "no wallet connection configured"}
	}
	bal, err := s.chain.TokenBalance(ctx, address)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(address, enso.NativeToken) {
		formatted, err := swap.FormatUnits(bal.String(), enso.NativeTokenDecimals)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Balance: %s POL", formatted), nil
	}

	// The price endpoint is the cheapest source of the token's decimals.
	if s.prices != nil {
		if pr, perr := s.prices.GetPrice(ctx, s.chainID, address); perr == nil && pr.Decimals > 0 {
			if formatted, ferr := swap.FormatUnits(bal.String(), pr.Decimals); ferr == nil {
				return fmt.Sprintf("Balance: %s (token %s)", formatted, address), nil
			}
		}
	}
	return fmt.Sprintf("Balance: %s base units (token %s)", bal.String(), address), nil
}

func (s *Session) tokenPrice(ctx context.Context, address string) (string, error) {
	if s.prices == nil {
		return "", &swap.ConfigurationError{Reason: "no price source configured"}
	}
	pr, err := s.prices.GetPrice(ctx, s.chainID, address)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Current price: $%.4f (token %s)", pr.Price, address), nil
}

// executionFailure maps executor errors to user-facing messages. A wallet
// rejection is a normal outcome, not an error.
func (s *Session) executionFailure(err error) (string, error) {
	var rejected *swap.UserRejectedError
	if errors.As(err, &rejected) {
		return "Transaction was rejected in the wallet. Nothing was sent.", nil
	}
	var execErr *swap.ExecutionError
	if errors.As(err, &execErr) {
		return fmt.Sprintf("Execution failed: %s.", execErr.Reason), nil
	}
	return "", err
}

func confirmedMessage(hash string) string {
	return fmt.Sprintf("Transaction confirmed: https://polygonscan.com/tx/%s", hash)
}

// appendTurn records a user input and optional assistant reply without a
// model round trip.
func (s *Session) appendTurn(user, assistant string) {
	s.history = append(s.history, agent.Message{Role: agent.RoleUser, Content: user})
	if assistant != "" {
		s.history = append(s.history, agent.Message{Role: agent.RoleAssistant, Content: assistant})
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []agent.Message {
	out := make([]agent.Message, len(s.history))
	copy(out, s.history)
	return out
}
