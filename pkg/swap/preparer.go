package swap

import (
	"context"
	"sync"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/sirupsen/logrus"
)

// TokenResolver resolves a symbol to a provider token entry; nil means no
// match.
type TokenResolver interface {
	Resolve(ctx context.Context, symbol string) (*enso.Token, error)
}

// RouteQuoteClient fetches executable routes and informational quotes.
type RouteQuoteClient interface {
	GetRoute(ctx context.Context, p enso.RouteParams) (*enso.RouteResponse, error)
	GetQuote(ctx context.Context, p enso.QuoteParams) (*enso.QuoteResponse, error)
}

// Preparer is the sole creator of PreparedSwap values. It resolves the
// destination token, then fetches route and quote concurrently; both must
// succeed or the preparation fails as a unit.
type Preparer struct {
	resolver    TokenResolver
	client      RouteQuoteClient
	chainID     int64
	fromAddress string
	slippageBps int
	log         *logrus.Logger
}

// NewPreparer creates a preparer for swaps of the native token on one chain,
// sent from a fixed wallet address.
func NewPreparer(resolver TokenResolver, client RouteQuoteClient, chainID int64, fromAddress string, slippageBps int, log *logrus.Logger) *Preparer {
	if log == nil {
		log = logrus.New()
	}
	return &Preparer{
		resolver:    resolver,
		client:      client,
		chainID:     chainID,
		fromAddress: fromAddress,
		slippageBps: slippageBps,
		log:         log,
	}
}

// PrepareSwap resolves symbolOut and quotes a swap of amountIn (base units)
// of the native token for it. It fails with *TokenNotFoundError when the
// symbol resolves to nothing, *RouteFetchError / *QuoteFetchError when
// either provider call fails. No partial PreparedSwap is ever returned.
func (p *Preparer) PrepareSwap(ctx context.Context, amountIn, symbolOut string) (*PreparedSwap, error) {
	if !ValidBaseUnits(amountIn) {
		return nil, &RouteFetchError{Err: errInvalidAmount(amountIn)}
	}

	tok, err := p.resolver.Resolve(ctx, symbolOut)
	if err != nil {
		return nil, &RouteFetchError{Err: err}
	}
	if tok == nil {
		return nil, &TokenNotFoundError{Symbol: symbolOut}
	}

	routeParams := enso.RouteParams{
		ChainID:     p.chainID,
		FromAddress: p.fromAddress,
		TokenIn:     enso.NativeToken,
		TokenOut:    tok.Address,
		AmountIn:    amountIn,
		Receiver:    p.fromAddress,
		Spender:     p.fromAddress,
		SlippageBps: p.slippageBps,
	}
	quoteParams := enso.QuoteParams{
		ChainID:     p.chainID,
		FromAddress: p.fromAddress,
		TokenIn:     enso.NativeToken,
		TokenOut:    tok.Address,
		AmountIn:    amountIn,
	}

	// Route and quote run concurrently; the swap is prepared only once both
	// have resolved.
	var (
		wg       sync.WaitGroup
		route    *enso.RouteResponse
		quote    *enso.QuoteResponse
		routeErr error
		quoteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		route, routeErr = p.client.GetRoute(ctx, routeParams)
	}()
	go func() {
		defer wg.Done()
		quote, quoteErr = p.client.GetQuote(ctx, quoteParams)
	}()
	wg.Wait()

	if routeErr != nil {
		return nil, &RouteFetchError{Err: routeErr}
	}
	if quoteErr != nil {
		return nil, &QuoteFetchError{Err: quoteErr}
	}

	formattedIn, err := FormatUnits(amountIn, enso.NativeTokenDecimals)
	if err != nil {
		return nil, &RouteFetchError{Err: err}
	}
	formattedOut, err := FormatUnits(quote.AmountOut, tok.Decimals)
	if err != nil {
		return nil, &QuoteFetchError{Err: err}
	}

	prepared := &PreparedSwap{
		TokenOutAddress:    tok.Address,
		TokenOutSymbol:     tok.Symbol,
		TokenOutDecimals:   tok.Decimals,
		AmountIn:           amountIn,
		FormattedAmountIn:  formattedIn,
		FormattedAmountOut: formattedOut,
		// The provider encodes price impact in basis-like units.
		PriceImpact: quote.PriceImpact / 100,
		RouteData:   route,
		QuoteData:   quote,
	}

	p.log.WithFields(logrus.Fields{
		"token_out":    tok.Symbol,
		"amount_in":    prepared.FormattedAmountIn,
		"amount_out":   prepared.FormattedAmountOut,
		"price_impact": prepared.PriceImpact,
	}).Debug("prepared swap")

	return prepared, nil
}

type errInvalidAmount string

func (e errInvalidAmount) Error() string {
	return "amount must be a positive base-unit integer, got \"" + string(e) + "\""
}
