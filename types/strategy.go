package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenTransfer is a fully-bound candidate settlement: a concrete token on
// a concrete chain, an integer amount in the token's native decimals, and
// resolved sender and receiver addresses.
type TokenTransfer struct {
	Receiver common.Address `json:"receiver"`
	Sender   common.Address `json:"sender"`
	Token    Token          `json:"token"`
	Amount   *big.Int       `json:"amount"` // token native decimals
}

// ProposedTokenTransfer is the illustrative form generated without a
// connected wallet: the receiver may still be an ENS name and there is no
// sender.
type ProposedTokenTransfer struct {
	Receiver Receiver `json:"receiver"`
	Token    Token    `json:"token"`
	Amount   *big.Int `json:"amount"` // token native decimals
}

// Strategy is one real settlement option for a Payment. Strategy lists are
// regenerated from scratch whenever amount, ticker, rates, or balances
// change; a Strategy is never mutated after construction.
type Strategy struct {
	TokenTransfer TokenTransfer `json:"tokenTransfer"`
}

// Key returns the stable identity of the strategy across list
// regeneration: the (chain, token) pair it settles on.
func (s Strategy) Key() TokenKey {
	return s.TokenTransfer.Token.Key()
}

// ChainID returns the settlement chain of the strategy.
func (s Strategy) ChainID() uint64 {
	return s.TokenTransfer.Token.ChainID
}

// ProposedStrategy is one illustrative settlement option for a
// ProposedPayment, generated without wallet state.
type ProposedStrategy struct {
	ProposedTokenTransfer ProposedTokenTransfer `json:"proposedTokenTransfer"`
}

// Key returns the stable (chain, token) identity of the proposed strategy.
func (s ProposedStrategy) Key() TokenKey {
	return s.ProposedTokenTransfer.Token.Key()
}
