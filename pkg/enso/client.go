package enso

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client wraps the Enso routing/quoting HTTP API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	limiter *rate.Limiter
	log     *logrus.Logger
}

// NewClient creates an Enso API client. The API key is required for every
// endpoint.
func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.enso.finance/api/v1"
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
		// Enso free-tier allows a handful of requests per second.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     log,
	}
}

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("enso http %d", e.StatusCode)
	}
	// The API reports failures as {"message": "..."}; surface just that when
	// present.
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &parsed); err == nil && parsed.Message != "" {
		return fmt.Sprintf("enso http %d: %s", e.StatusCode, parsed.Message)
	}
	return fmt.Sprintf("enso http %d: %s", e.StatusCode, b)
}

// GetTokens retrieves the token list for a chain, following pagination until
// the provider reports the last page.
func (c *Client) GetTokens(ctx context.Context, chainID int64) ([]Token, error) {
	var all []Token
	page := 1
	for {
		q := url.Values{}
		q.Set("chainId", strconv.FormatInt(chainID, 10))
		q.Set("includeMetadata", "true")
		q.Set("page", strconv.Itoa(page))

		var out tokensPage
		if err := c.get(ctx, "/tokens", q, &out); err != nil {
			return nil, fmt.Errorf("failed to get tokens: %w", err)
		}
		all = append(all, out.Data...)

		if out.Meta == nil || out.Meta.CurrentPage >= out.Meta.LastPage || len(out.Data) == 0 {
			break
		}
		page++
	}
	c.log.WithFields(logrus.Fields{"chain_id": chainID, "tokens": len(all)}).Debug("fetched token list")
	return all, nil
}

// GetRoute requests an executable swap route.
func (c *Client) GetRoute(ctx context.Context, p RouteParams) (*RouteResponse, error) {
	if err := validateSwapParams(p.FromAddress, p.TokenIn, p.TokenOut, p.AmountIn); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("chainId", strconv.FormatInt(p.ChainID, 10))
	q.Set("fromAddress", p.FromAddress)
	q.Set("tokenIn", p.TokenIn)
	q.Set("tokenOut", p.TokenOut)
	q.Set("amountIn", p.AmountIn)
	if p.Receiver != "" {
		q.Set("receiver", p.Receiver)
	}
	if p.Spender != "" {
		q.Set("spender", p.Spender)
	}
	if p.SlippageBps > 0 {
		q.Set("slippage", strconv.Itoa(p.SlippageBps))
	}

	var out RouteResponse
	if err := c.get(ctx, "/shortcuts/route", q, &out); err != nil {
		return nil, err
	}
	if out.Tx == nil {
		return nil, fmt.Errorf("route response missing transaction payload")
	}
	return &out, nil
}

// GetQuote requests an informational price quote.
func (c *Client) GetQuote(ctx context.Context, p QuoteParams) (*QuoteResponse, error) {
	if err := validateSwapParams(p.FromAddress, p.TokenIn, p.TokenOut, p.AmountIn); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("chainId", strconv.FormatInt(p.ChainID, 10))
	q.Set("fromAddress", p.FromAddress)
	q.Set("tokenIn", p.TokenIn)
	q.Set("tokenOut", p.TokenOut)
	q.Set("amountIn", p.AmountIn)

	var out QuoteResponse
	if err := c.get(ctx, "/shortcuts/quote", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBundle encodes multiple route actions into one atomic transaction.
func (c *Client) GetBundle(ctx context.Context, chainID int64, fromAddress string, actions []BundleAction) (*BundleResponse, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("no actions to bundle")
	}
	if strings.TrimSpace(fromAddress) == "" {
		return nil, fmt.Errorf("fromAddress is required")
	}

	q := url.Values{}
	q.Set("chainId", strconv.FormatInt(chainID, 10))
	q.Set("fromAddress", fromAddress)

	body, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle request: %w", err)
	}

	var out BundleResponse
	if err := c.post(ctx, "/shortcuts/bundle", q, body, &out); err != nil {
		return nil, err
	}
	if out.Tx == nil {
		return nil, fmt.Errorf("bundle response missing transaction payload")
	}
	return &out, nil
}

// GetPrice returns the provider's USD price for a token.
func (c *Client) GetPrice(ctx context.Context, chainID int64, address string) (*PriceResponse, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("token address is required")
	}

	var out PriceResponse
	path := fmt.Sprintf("/prices/%d/%s", chainID, address)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateSwapParams(from, tokenIn, tokenOut, amountIn string) error {
	if strings.TrimSpace(from) == "" {
		return fmt.Errorf("fromAddress is required")
	}
	if strings.TrimSpace(tokenIn) == "" {
		return fmt.Errorf("tokenIn is required")
	}
	if strings.TrimSpace(tokenOut) == "" {
		return fmt.Errorf("tokenOut is required")
	}
	if strings.TrimSpace(amountIn) == "" {
		return fmt.Errorf("amountIn is required")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) post(ctx context.Context, path string, q url.Values, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, path, q, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &HTTPError{StatusCode: res.StatusCode, Body: respBody}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode enso response: %w", err)
		}
	}
	return nil
}
