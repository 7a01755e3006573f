package swap

import "fmt"

// TokenNotFoundError means the resolver found no exact or substring match
// for the requested symbol. Recoverable by re-entering a symbol.
type TokenNotFoundError struct {
	Symbol string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("token '%s' not found on Polygon", e.Symbol)
}

// RouteFetchError wraps a failure of the executable-route request.
type RouteFetchError struct {
	Err error
}

func (e *RouteFetchError) Error() string {
	return fmt.Sprintf("failed to fetch route: %v", e.Err)
}

func (e *RouteFetchError) Unwrap() error { return e.Err }

// QuoteFetchError wraps a failure of the price-quote request.
type QuoteFetchError struct {
	Err error
}

func (e *QuoteFetchError) Error() string {
	return fmt.Sprintf("failed to fetch quote: %v", e.Err)
}

func (e *QuoteFetchError) Unwrap() error { return e.Err }

// UserRejectedError means the signing prompt was declined. It is not a
// systemic failure and must not be surfaced as a generic error.
type UserRejectedError struct{}

func (e *UserRejectedError) Error() string {
	return "transaction was rejected in wallet"
}

// ExecutionError means the transaction reverted or failed to confirm.
type ExecutionError struct {
	Reason string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transaction failed: %s", e.Reason)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ConfigurationError disables the chat/swap features of the current session
// until corrected (e.g. missing API key or wallet key). It never crashes the
// rest of the application.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
