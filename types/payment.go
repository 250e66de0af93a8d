package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReceiverKind tags the two representable receiver forms.
type ReceiverKind string

const (
	ReceiverAddress ReceiverKind = "address"
	ReceiverENS     ReceiverKind = "ens"
)

// Receiver is the payee of a proposed payment: either a concrete address
// or an ENS name still to be resolved. Construct only via NewAddressReceiver
// or NewENSReceiver; the tag is fixed at construction and never re-inferred.
type Receiver struct {
	Kind    ReceiverKind   `json:"kind"`
	Address common.Address `json:"address,omitempty"`
	ENSName string         `json:"ensName,omitempty"`
}

// NewAddressReceiver builds a receiver from a concrete address.
func NewAddressReceiver(addr common.Address) Receiver {
	return Receiver{Kind: ReceiverAddress, Address: addr}
}

// NewENSReceiver builds a receiver from an ENS name. Resolution happens
// outside this core; a Payment can only be derived once it has.
func NewENSReceiver(name string) Receiver {
	if name == "" {
		panic("types: ENS receiver requires a non-empty name")
	}
	return Receiver{Kind: ReceiverENS, ENSName: name}
}

// PaymentModeKind tags the two payment modes.
type PaymentModeKind string

const (
	PaymentModeFixed          PaymentModeKind = "fixed"
	PaymentModePayWhatYouWant PaymentModeKind = "payWhatYouWant"
)

// PayWhatYouWant configures the open-amount payment mode.
type PayWhatYouWant struct {
	// SuggestedAmounts are optional preset logical-asset amounts, in
	// LogicalAssetDecimals, shown to the sender in order.
	SuggestedAmounts []*big.Int `json:"suggestedAmounts,omitempty"`

	// AllowArbitraryAmount permits a free-form sender-chosen amount.
	AllowArbitraryAmount bool `json:"allowArbitraryAmount,omitempty"`

	// AnyAsset permits settlement in any supported logical asset, not
	// just the payment's primary and secondary tickers.
	AnyAsset bool `json:"anyAsset,omitempty"`
}

// PaymentMode is a tagged union: a fixed logical-asset amount, or
// pay-what-you-want. Construct via NewFixedAmountMode / NewPayWhatYouWantMode.
type PaymentMode struct {
	Kind           PaymentModeKind `json:"kind"`
	Amount         *big.Int        `json:"amount,omitempty"` // fixed mode, LogicalAssetDecimals
	PayWhatYouWant *PayWhatYouWant `json:"payWhatYouWant,omitempty"`
}

// NewFixedAmountMode builds a fixed-amount mode. The amount is in
// LogicalAssetDecimals and must be positive; anything else is a contract
// violation upstream.
func NewFixedAmountMode(amount *big.Int) PaymentMode {
	if amount == nil || amount.Sign() <= 0 {
		panic("types: fixed payment amount must be a positive integer")
	}
	return PaymentMode{Kind: PaymentModeFixed, Amount: new(big.Int).Set(amount)}
}

// NewPayWhatYouWantMode builds a pay-what-you-want mode.
func NewPayWhatYouWantMode(p PayWhatYouWant) PaymentMode {
	return PaymentMode{Kind: PaymentModePayWhatYouWant, PayWhatYouWant: &p}
}

// RouterPolicy controls whether native-currency transfers must route
// through the canonical transfer-router contract on the settlement chain.
type RouterPolicy string

const (
	RouterNever   RouterPolicy = "never"
	RouterPrefer  RouterPolicy = "prefer"
	RouterRequire RouterPolicy = "require"
)

// ProposedPayment is a payment intent whose receiver may be unresolved and
// whose amount may not yet be chosen. Proposed (illustrative) strategies can
// be generated from it without any wallet.
type ProposedPayment struct {
	Receiver         Receiver     `json:"receiver"`
	PrimaryTicker    Ticker       `json:"primaryTicker" validate:"required"`
	SecondaryTickers []Ticker     `json:"secondaryTickers,omitempty"`
	Mode             PaymentMode  `json:"mode"`
	NativeRouter     RouterPolicy `json:"nativeRouter,omitempty"`
}

// AcceptedTickers returns the ordered logical-asset tickers the sender may
// settle in: primary first, then secondaries.
func (pp ProposedPayment) AcceptedTickers() []Ticker {
	out := make([]Ticker, 0, 1+len(pp.SecondaryTickers))
	out = append(out, pp.PrimaryTicker)
	out = append(out, pp.SecondaryTickers...)
	return out
}

// AnyAsset reports whether the payment mode permits settlement in any
// supported asset.
func (pp ProposedPayment) AnyAsset() bool {
	return pp.Mode.Kind == PaymentModePayWhatYouWant && pp.Mode.PayWhatYouWant.AnyAsset
}

// Payment is a ProposedPayment whose receiver has been resolved to a
// concrete address and which carries a concrete logical-asset amount.
// Real (wallet-bound) strategies are only ever generated from a Payment.
type Payment struct {
	ReceiverAddress  common.Address `json:"receiverAddress"`
	PrimaryTicker    Ticker         `json:"primaryTicker"`
	SecondaryTickers []Ticker       `json:"secondaryTickers,omitempty"`
	Amount           *big.Int       `json:"amount"` // LogicalAssetDecimals
	AnyAsset         bool           `json:"anyAsset,omitempty"`
	NativeRouter     RouterPolicy   `json:"nativeRouter,omitempty"`
}

// DerivePayment binds a proposed payment to a resolved receiver address and
// a concrete amount. For fixed-amount payments the amount is taken from the
// mode and the amount argument must be nil; for pay-what-you-want the
// sender-chosen amount is required.
func DerivePayment(pp ProposedPayment, receiver common.Address, amount *big.Int) (Payment, error) {
	p := Payment{
		ReceiverAddress:  receiver,
		PrimaryTicker:    pp.PrimaryTicker,
		SecondaryTickers: append([]Ticker(nil), pp.SecondaryTickers...),
		AnyAsset:         pp.AnyAsset(),
		NativeRouter:     pp.NativeRouter,
	}
	switch pp.Mode.Kind {
	case PaymentModeFixed:
		if amount != nil {
			return Payment{}, &CheckoutError{
				Code:    ErrInvalidPayment,
				Message: "fixed-amount payment cannot be derived with an override amount",
			}
		}
		p.Amount = new(big.Int).Set(pp.Mode.Amount)
	case PaymentModePayWhatYouWant:
		if amount == nil || amount.Sign() <= 0 {
			return Payment{}, &CheckoutError{
				Code:    ErrInvalidPayment,
				Message: "pay-what-you-want payment requires a positive chosen amount",
			}
		}
		p.Amount = new(big.Int).Set(amount)
	default:
		panic("types: payment mode constructed without a tag")
	}
	return p, nil
}

// AcceptedTickers returns the ordered logical-asset tickers the sender may
// settle in.
func (p Payment) AcceptedTickers() []Ticker {
	out := make([]Ticker, 0, 1+len(p.SecondaryTickers))
	out = append(out, p.PrimaryTicker)
	out = append(out, p.SecondaryTickers...)
	return out
}

// ReceiverStrategyPreferences are receiver-configured constraints applied
// during strategy generation. The generator treats them as an exclusion
// filter plus an ordering weight and assumes nothing else about them.
type ReceiverStrategyPreferences struct {
	ExcludedTokenKeys []TokenKey `json:"excludedTokenKeys,omitempty"`
	ExcludedChainIDs  []uint64   `json:"excludedChainIds,omitempty"`
	PreferredChainIDs []uint64   `json:"preferredChainIds,omitempty"`
}

// ExcludesToken reports whether the preferences exclude the given token.
func (p ReceiverStrategyPreferences) ExcludesToken(key TokenKey) bool {
	for _, k := range p.ExcludedTokenKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ExcludesChain reports whether the preferences exclude the given chain.
func (p ReceiverStrategyPreferences) ExcludesChain(chainID uint64) bool {
	for _, id := range p.ExcludedChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}

// ChainPreferenceIndex returns the position of chainID in the preferred
// chain ordering, or len(preferred) when the chain is unlisted, so listed
// chains sort ahead of unlisted ones.
func (p ReceiverStrategyPreferences) ChainPreferenceIndex(chainID uint64) int {
	for i, id := range p.PreferredChainIDs {
		if id == chainID {
			return i
		}
	}
	return len(p.PreferredChainIDs)
}
