package types

// CheckoutError is the typed error returned across package boundaries.
// Absence of data (no rate, no balance, no viable strategy) is never an
// error; errors are reserved for contract violations and rejected inputs.
type CheckoutError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *CheckoutError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidPayment   = "INVALID_PAYMENT"
	ErrInvalidConfig    = "INVALID_CONFIG"
	ErrSelectionLocked  = "SELECTION_LOCKED"
	ErrUnknownStrategy  = "UNKNOWN_STRATEGY"
	ErrUnsupportedChain = "UNSUPPORTED_CHAIN"
	ErrSourceFailure    = "SOURCE_FAILURE"
)
