package enso

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "test-key", nil), srv
}

func TestGetTokensPaginates(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "137", r.URL.Query().Get("chainId"))

		page := r.URL.Query().Get("page")
		out := tokensPage{Meta: &pagesMeta{LastPage: 2}}
		if page == "1" {
			out.Data = []Token{{Symbol: "USDC", Address: "0xusdc", Decimals: 6}}
			out.Meta.CurrentPage = 1
		} else {
			out.Data = []Token{{Symbol: "WETH", Address: "0xweth", Decimals: 18}}
			out.Meta.CurrentPage = 2
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	defer srv.Close()

	tokens, err := c.GetTokens(context.Background(), 137)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, "WETH", tokens[1].Symbol)
}

func TestGetRoute(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shortcuts/route", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, NativeToken, q.Get("tokenIn"))
		assert.Equal(t, "0xout", q.Get("tokenOut"))
		assert.Equal(t, "1000000000000000000", q.Get("amountIn"))
		assert.Equal(t, "50", q.Get("slippage"))

		_ = json.NewEncoder(w).Encode(RouteResponse{
			AmountOut: "520000",
			Tx:        &Tx{To: "0xrouter", Data: "0xdeadbeef", Value: "1000000000000000000"},
		})
	})
	defer srv.Close()

	route, err := c.GetRoute(context.Background(), RouteParams{
		ChainID:     137,
		FromAddress: "0xme",
		TokenIn:     NativeToken,
		TokenOut:    "0xout",
		AmountIn:    "1000000000000000000",
		SlippageBps: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "520000", route.AmountOut)
	require.NotNil(t, route.Tx)
	assert.Equal(t, "0xrouter", route.Tx.To)
}

func TestGetRouteMissingTx(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RouteResponse{AmountOut: "520000"})
	})
	defer srv.Close()

	_, err := c.GetRoute(context.Background(), RouteParams{
		ChainID: 137, FromAddress: "0xme", TokenIn: NativeToken, TokenOut: "0xout", AmountIn: "1",
	})
	assert.Error(t, err)
}

func TestGetRouteValidatesParams(t *testing.T) {
	c := NewClient("http://unused", "k", nil)

	_, err := c.GetRoute(context.Background(), RouteParams{ChainID: 137})
	assert.Error(t, err)
}

func TestGetQuote(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shortcuts/quote", r.URL.Path)
		_ = json.NewEncoder(w).Encode(QuoteResponse{AmountOut: "520000", PriceImpact: 12})
	})
	defer srv.Close()

	quote, err := c.GetQuote(context.Background(), QuoteParams{
		ChainID: 137, FromAddress: "0xme", TokenIn: NativeToken, TokenOut: "0xout", AmountIn: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "520000", quote.AmountOut)
	assert.Equal(t, 12.0, quote.PriceImpact)
}

func TestGetBundle(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shortcuts/bundle", r.URL.Path)
		assert.Equal(t, "0xme", r.URL.Query().Get("fromAddress"))

		var actions []BundleAction
		require.NoError(t, json.NewDecoder(r.Body).Decode(&actions))
		require.Len(t, actions, 2)
		assert.Equal(t, "enso", actions[0].Protocol)
		assert.Equal(t, "route", actions[0].Action)

		_ = json.NewEncoder(w).Encode(BundleResponse{Tx: &Tx{To: "0xrouter", Data: "0x00"}})
	})
	defer srv.Close()

	actions := []BundleAction{
		{Protocol: "enso", Action: "route", Args: map[string]any{"tokenIn": NativeToken, "tokenOut": "0xa", "amountIn": "1"}},
		{Protocol: "enso", Action: "route", Args: map[string]any{"tokenIn": NativeToken, "tokenOut": "0xb", "amountIn": "2"}},
	}
	bundle, err := c.GetBundle(context.Background(), 137, "0xme", actions)
	require.NoError(t, err)
	require.NotNil(t, bundle.Tx)
	assert.Equal(t, "0xrouter", bundle.Tx.To)
}

func TestGetBundleRejectsEmpty(t *testing.T) {
	c := NewClient("http://unused", "k", nil)

	_, err := c.GetBundle(context.Background(), 137, "0xme", nil)
	assert.Error(t, err)
}

func TestGetPrice(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/137/0xusdc", r.URL.Path)
		_ = json.NewEncoder(w).Encode(PriceResponse{Address: "0xusdc", Decimals: 6, Price: 0.9998})
	})
	defer srv.Close()

	price, err := c.GetPrice(context.Background(), 137, "0xusdc")
	require.NoError(t, err)
	assert.Equal(t, 0.9998, price.Price)
	assert.Equal(t, 6, price.Decimals)
}

func TestHTTPErrorSurfacesMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"could not find a route"}`))
	})
	defer srv.Close()

	_, err := c.GetQuote(context.Background(), QuoteParams{
		ChainID: 137, FromAddress: "0xme", TokenIn: NativeToken, TokenOut: "0xout", AmountIn: "1",
	})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "could not find a route")
}
