package enso

// NativeToken is the pseudo-address Enso uses for the chain's native asset
// (POL on Polygon).
const NativeToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// NativeTokenDecimals is the decimal count of the native asset.
const NativeTokenDecimals = 18

// Token is one entry of the provider token list.
type Token struct {
	Address  string  `json:"address"`
	ChainID  int64   `json:"chainId"`
	Decimals int     `json:"decimals"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	LogoURI  string  `json:"logosUri,omitempty"`
	Type     string  `json:"type,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

type tokensPage struct {
	Data []Token    `json:"data"`
	Meta *pagesMeta `json:"meta,omitempty"`
}

type pagesMeta struct {
	Total       int `json:"total"`
	LastPage    int `json:"lastPage"`
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
}

// Tx is the executable transaction payload returned by the route and bundle
// endpoints: everything the wallet needs to sign and broadcast.
type Tx struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
	From  string `json:"from,omitempty"`
}

// RouteParams are the inputs of a route (executable swap) request.
type RouteParams struct {
	ChainID     int64
	FromAddress string
	TokenIn     string
	TokenOut    string
	AmountIn    string // base units
	Receiver    string
	Spender     string
	SlippageBps int
}

// RouteResponse is the executable route for a swap.
type RouteResponse struct {
	Gas       string      `json:"gas,omitempty"`
	AmountOut string      `json:"amountOut"`
	CreatedAt int64       `json:"createdAt,omitempty"`
	Tx        *Tx         `json:"tx"`
	Route     []RouteStep `json:"route,omitempty"`
}

// QuoteParams are the inputs of an informational quote request.
type QuoteParams struct {
	ChainID     int64
	FromAddress string
	TokenIn     string
	TokenOut    string
	AmountIn    string // base units
}

// QuoteResponse is the informational pricing detail of a swap. PriceImpact is
// in the provider's basis-like units; divide by 100 for a percentage.
type QuoteResponse struct {
	AmountOut   string      `json:"amountOut"`
	Gas         string      `json:"gas,omitempty"`
	PriceImpact float64     `json:"priceImpact"`
	Route       []RouteStep `json:"route,omitempty"`
}

// RouteStep is one hop of a route breakdown.
type RouteStep struct {
	Protocol string   `json:"protocol"`
	Action   string   `json:"action"`
	TokenIn  []string `json:"tokenIn,omitempty"`
	TokenOut []string `json:"tokenOut,omitempty"`
}

// BundleAction is one logical operation of a bundle request.
type BundleAction struct {
	Protocol string         `json:"protocol"`
	Action   string         `json:"action"`
	Args     map[string]any `json:"args"`
}

// BundleResponse is the single aggregated transaction for a bundle of
// actions; the on-chain call is atomic.
type BundleResponse struct {
	Gas       string         `json:"gas,omitempty"`
	CreatedAt int64          `json:"createdAt,omitempty"`
	Tx        *Tx            `json:"tx"`
	Bundle    []BundleAction `json:"bundle,omitempty"`
}

// PriceResponse is the USD price of a token.
type PriceResponse struct {
	Address  string  `json:"address"`
	ChainID  int64   `json:"chainId"`
	Decimals int     `json:"decimals"`
	Price    float64 `json:"price"`
}
