package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/FreePay/3cities-sub001/types"
)

// ContractCaller is the subset of an EVM client the Chainlink source
// needs; *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var (
	latestAnswerSelector = crypto.Keccak256([]byte("latestAnswer()"))[:4]
	decimalsSelector     = crypto.Keccak256([]byte("decimals()"))[:4]
)

// ChainlinkSource quotes a pair from an on-chain Chainlink price feed
// aggregator contract.
type ChainlinkSource struct {
	pair     Pair
	feed     common.Address
	caller   ContractCaller
	interval time.Duration

	decimals *int // cached after first read
}

// NewChainlinkSource builds a source reading the feed at addr, which must
// quote 1 denominator == rate numerator (e.g. the ETH/USD feed for
// denominator ETH, numerator USD).
func NewChainlinkSource(denominator, numerator types.Ticker, feed common.Address, caller ContractCaller, interval time.Duration) *ChainlinkSource {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ChainlinkSource{
		pair:     Pair{Denominator: denominator, Numerator: numerator},
		feed:     feed,
		caller:   caller,
		interval: interval,
	}
}

func (s *ChainlinkSource) Pair() Pair                     { return s.pair }
func (s *ChainlinkSource) Name() string                   { return "chainlink" }
func (s *ChainlinkSource) RefetchInterval() time.Duration { return s.interval }

func (s *ChainlinkSource) FetchRate(ctx context.Context) (float64, error) {
	if s.decimals == nil {
		out, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &s.feed, Data: decimalsSelector}, nil)
		if err != nil {
			return 0, fmt.Errorf("chainlink feed %s: decimals: %w", s.feed.Hex(), err)
		}
		if len(out) < 32 {
			return 0, fmt.Errorf("chainlink feed %s: short decimals response", s.feed.Hex())
		}
		d := int(new(big.Int).SetBytes(out[:32]).Int64())
		s.decimals = &d
	}

	out, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &s.feed, Data: latestAnswerSelector}, nil)
	if err != nil {
		return 0, fmt.Errorf("chainlink feed %s: latestAnswer: %w", s.feed.Hex(), err)
	}
	if len(out) < 32 {
		return 0, fmt.Errorf("chainlink feed %s: short answer response", s.feed.Hex())
	}
	// latestAnswer is an int256; a broken feed can report a negative
	// answer, which must not wrap into a huge unsigned value.
	answer := gethmath.S256(new(big.Int).SetBytes(out[:32]))
	if answer.Sign() <= 0 {
		return 0, fmt.Errorf("chainlink feed %s: non-positive answer", s.feed.Hex())
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(*s.decimals)), nil))
	rate, _ := new(big.Float).Quo(new(big.Float).SetInt(answer), scale).Float64()
	return rate, nil
}
