// Package executor signs, broadcasts and confirms prepared swap
// transactions on Polygon.
package executor

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
	"github.com/Mazzz-zzz/voca.fi/pkg/wallet"
)

const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

// BundleClient aggregates multiple swap routes into one atomic transaction.
type BundleClient interface {
	GetBundle(ctx context.Context, chainID int64, fromAddress string, actions []enso.BundleAction) (*enso.BundleResponse, error)
}

// ApproveFunc is the wallet prompt: shown a human-readable summary, it
// reports whether the user approved signing. A nil ApproveFunc approves
// everything.
type ApproveFunc func(summary string) bool

// Config holds the executor wiring.
type Config struct {
	RPCURL      string
	ChainID     int64
	Signer      *wallet.Signer
	Bundler     BundleClient
	SlippageBps int
	Approve     ApproveFunc

	// PollInterval and ConfirmTimeout bound the receipt wait; zero values
	// pick sane defaults.
	PollInterval   time.Duration
	ConfirmTimeout time.Duration

	Logger *logrus.Logger
}

// Executor turns prepared swaps into confirmed transactions.
type Executor struct {
	client         *ethclient.Client
	chainID        *big.Int
	signer         *wallet.Signer
	bundler        BundleClient
	slippageBps    int
	approve        ApproveFunc
	pollInterval   time.Duration
	confirmTimeout time.Duration
	log            *logrus.Logger
}

// New connects to the RPC endpoint and verifies the chain id.
func New(ctx context.Context, cfg Config) (*Executor, error) {
	if cfg.Signer == nil {
		return nil, &swap.ConfigurationError{Reason: "no signing key configured"}
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc %s: %w", cfg.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		client.Close()
		return nil, &swap.ConfigurationError{
			Reason: fmt.Sprintf("rpc is chain %d, expected %d", chainID.Int64(), cfg.ChainID),
		}
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 3 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Executor{
		client:         client,
		chainID:        chainID,
		signer:         cfg.Signer,
		bundler:        cfg.Bundler,
		slippageBps:    cfg.SlippageBps,
		approve:        cfg.Approve,
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
		log:            cfg.Logger,
	}, nil
}

// Close releases the RPC connection.
func (e *Executor) Close() {
	e.client.Close()
}

// Address returns the executing wallet address.
func (e *Executor) Address() common.Address {
	return e.signer.Address()
}

// Execute signs and broadcasts a single prepared swap, then waits for the
// receipt. It returns the transaction hash on success.
func (e *Executor) Execute(ctx context.Context, p *swap.PreparedSwap) (string, error) {
	if p == nil || p.RouteData == nil || p.RouteData.Tx == nil {
		return "", &swap.ExecutionError{Reason: "no executable route attached"}
	}

	summary := fmt.Sprintf("Swap %s POL for ~%s %s (price impact %.2f%%)",
		p.FormattedAmountIn, p.FormattedAmountOut, p.TokenOutSymbol, p.PriceImpact)
	if e.approve != nil && !e.approve(summary) {
		return "", &swap.UserRejectedError{}
	}

	return e.sendAndWait(ctx, p.RouteData.Tx)
}

// ExecuteBundled aggregates several prepared swaps into one atomic bundle
// transaction: either every swap lands or none does.
func (e *Executor) ExecuteBundled(ctx context.Context, ps []*swap.PreparedSwap) (string, error) {
	if len(ps) == 0 {
		return "", &swap.ExecutionError{Reason: "nothing to execute"}
	}
	if e.bundler == nil {
		return "", &swap.ConfigurationError{Reason: "no bundle client configured"}
	}

	actions := make([]enso.BundleAction, 0, len(ps))
	var lines []string
	for _, p := range ps {
		if p == nil || p.TokenOutAddress == "" || p.AmountIn == "" {
			return "", &swap.ExecutionError{Reason: "bundle contains an unprepared swap"}
		}
		actions = append(actions, enso.BundleAction{
			Protocol: "enso",
			Action:   "route",
			Args: map[string]any{
				"tokenIn":  enso.NativeToken,
				"tokenOut": p.TokenOutAddress,
				"amountIn": p.AmountIn,
				"slippage": strconv.Itoa(e.slippageBps),
			},
		})
		lines = append(lines, fmt.Sprintf("%s POL -> ~%s %s",
			p.FormattedAmountIn, p.FormattedAmountOut, p.TokenOutSymbol))
	}

	bundle, err := e.bundler.GetBundle(ctx, e.chainID.Int64(), e.signer.Address().Hex(), actions)
	if err != nil {
		return "", &swap.ExecutionError{Reason: "failed to build bundle", Err: err}
	}
	if bundle.Tx == nil {
		return "", &swap.ExecutionError{Reason: "bundle response has no transaction"}
	}

	summary := fmt.Sprintf("Execute %d swaps in one transaction:\n  %s",
		len(ps), strings.Join(lines, "\n  "))
	if e.approve != nil && !e.approve(summary) {
		return "", &swap.UserRejectedError{}
	}

	return e.sendAndWait(ctx, bundle.Tx)
}

// sendAndWait builds an EIP-1559 transaction from the provider payload,
// signs, broadcasts and polls for the receipt.
func (e *Executor) sendAndWait(ctx context.Context, payload *enso.Tx) (string, error) {
	to := common.HexToAddress(payload.To)
	data := common.FromHex(payload.Data)
	from := e.signer.Address()

	value := new(big.Int)
	if payload.Value != "" {
		v, ok := parseBig(payload.Value)
		if !ok {
			return "", &swap.ExecutionError{Reason: fmt.Sprintf("invalid transaction value %q", payload.Value)}
		}
		value = v
	}

	msg := ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}
	if _, err := e.client.CallContract(ctx, msg, nil); err != nil {
		return "", &swap.ExecutionError{Reason: "transaction simulation failed", Err: err}
	}

	gasLimit, err := e.client.EstimateGas(ctx, msg)
	if err != nil {
		return "", &swap.ExecutionError{Reason: "failed to estimate gas", Err: err}
	}
	gasLimit = gasLimit * 120 / 100

	tipCap, err := e.client.SuggestGasTipCap(ctx)
	if err != nil {
		// Polygon validators require a 30 gwei minimum priority fee.
		tipCap = big.NewInt(30_000_000_000)
	}
	head, err := e.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", &swap.ExecutionError{Reason: "failed to get chain head", Err: err}
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tipCap)

	nonce, err := e.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", &swap.ExecutionError{Reason: "failed to get nonce", Err: err}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signed, err := e.signer.SignTx(e.chainID, tx)
	if err != nil {
		return "", &swap.ExecutionError{Reason: "failed to sign transaction", Err: err}
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return "", &swap.ExecutionError{Reason: "failed to broadcast transaction", Err: err}
	}

	hash := signed.Hash()
	e.log.WithFields(logrus.Fields{"tx_hash": hash.Hex(), "nonce": nonce}).Info("transaction broadcast")

	receipt, err := e.waitForReceipt(ctx, hash)
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", &swap.ExecutionError{Reason: fmt.Sprintf("transaction %s reverted on-chain", hash.Hex())}
	}
	return hash.Hex(), nil
}

func (e *Executor) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := e.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if err != ethereum.NotFound {
			e.log.WithError(err).Debug("receipt lookup failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, &swap.ExecutionError{
				Reason: fmt.Sprintf("transaction %s not confirmed within %s", hash.Hex(), e.confirmTimeout),
				Err:    ctx.Err(),
			}
		case <-ticker.C:
		}
	}
}

// TokenBalance returns the wallet's balance of a token in base units. The
// native pseudo-address reads the account balance directly.
func (e *Executor) TokenBalance(ctx context.Context, tokenAddress string) (*big.Int, error) {
	owner := e.signer.Address()

	if strings.EqualFold(tokenAddress, enso.NativeToken) {
		bal, err := e.client.BalanceAt(ctx, owner, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get native balance: %w", err)
		}
		return bal, nil
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}
	input, err := parsed.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}

	token := common.HexToAddress(tokenAddress)
	out, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	results, err := parsed.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf: %w", err)
	}
	bal, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}
	return bal, nil
}

// TransactionStatus looks up a transaction by hash and describes its state.
func (e *Executor) TransactionStatus(ctx context.Context, hash string) (string, error) {
	h := common.HexToHash(hash)

	receipt, err := e.client.TransactionReceipt(ctx, h)
	if err == ethereum.NotFound {
		_, pending, terr := e.client.TransactionByHash(ctx, h)
		if terr == ethereum.NotFound {
			return "", fmt.Errorf("transaction %s not found", hash)
		}
		if terr != nil {
			return "", fmt.Errorf("failed to look up transaction: %w", terr)
		}
		if pending {
			return "pending", nil
		}
		return "known", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return fmt.Sprintf("confirmed in block %d", receipt.BlockNumber.Uint64()), nil
	}
	return fmt.Sprintf("reverted in block %d", receipt.BlockNumber.Uint64()), nil
}

// parseBig parses a decimal or 0x-prefixed hex integer string.
func parseBig(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}
