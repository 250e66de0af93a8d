package balances

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/FreePay/3cities-sub001/types"
)

// EVMCaller is the subset of an EVM client the balance source needs;
// *ethclient.Client satisfies it.
type EVMCaller interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]

// EVMSource fetches one token's balance from an EVM chain: BalanceAt for
// the native currency, an eth_call of balanceOf for ERC-20s.
type EVMSource struct {
	token    types.Token
	caller   EVMCaller
	interval time.Duration
}

// NewEVMSource builds a balance source for token backed by caller, which
// must be connected to the token's chain.
func NewEVMSource(token types.Token, caller EVMCaller, interval time.Duration) *EVMSource {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &EVMSource{token: token, caller: caller, interval: interval}
}

func (s *EVMSource) Token() types.Token             { return s.token }
func (s *EVMSource) RefetchInterval() time.Duration { return s.interval }

func (s *EVMSource) FetchBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	if s.token.IsNative() {
		return s.caller.BalanceAt(ctx, address, nil)
	}

	data := make([]byte, 0, 36)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(address.Bytes(), 32)...)
	out, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: s.token.ContractAddress, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s on chain %d: %w", s.token.Ticker, s.token.ChainID, err)
	}
	if len(out) < 32 {
		return nil, fmt.Errorf("balanceOf %s on chain %d: short response", s.token.Ticker, s.token.ChainID)
	}
	return new(big.Int).SetBytes(out[:32]), nil
}
