package token

import (
	"context"
	"strings"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/sirupsen/logrus"
)

// Source supplies the full token list for a chain.
type Source interface {
	GetTokens(ctx context.Context, chainID int64) ([]enso.Token, error)
}

// Cache is an optional token-list cache in front of the Source.
type Cache interface {
	Get(ctx context.Context, chainID int64) ([]enso.Token, bool)
	Set(ctx context.Context, chainID int64, tokens []enso.Token)
}

// Resolver maps a human-entered token symbol to a provider token entry.
type Resolver struct {
	source  Source
	cache   Cache
	chainID int64
	log     *logrus.Logger
}

// NewResolver creates a resolver for a fixed chain. cache may be nil.
func NewResolver(source Source, cache Cache, chainID int64, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		source:  source,
		cache:   cache,
		chainID: chainID,
		log:     log,
	}
}

// Resolve finds a token by symbol. A case-insensitive exact match wins; if
// none exists the first case-insensitive substring match is accepted, in
// provider order. Returns nil when neither kind matches; callers surface a
// token-not-found error rather than proceeding.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (*enso.Token, error) {
	tokens, err := r.list(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}

	// Exact match first
	for i := range tokens {
		if strings.ToLower(tokens[i].Symbol) == symbol {
			return &tokens[i], nil
		}
	}

	// Fall back to the first substring match
	for i := range tokens {
		if strings.Contains(strings.ToLower(tokens[i].Symbol), symbol) {
			return &tokens[i], nil
		}
	}

	r.log.WithField("symbol", symbol).Debug("token not found in provider list")
	return nil, nil
}

func (r *Resolver) list(ctx context.Context) ([]enso.Token, error) {
	if r.cache != nil {
		if tokens, ok := r.cache.Get(ctx, r.chainID); ok {
			return tokens, nil
		}
	}

	tokens, err := r.source.GetTokens(ctx, r.chainID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, r.chainID, tokens)
	}
	return tokens, nil
}
