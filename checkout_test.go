package checkout

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/FreePay/3cities-sub001/oracle"
	"github.com/FreePay/3cities-sub001/registry"
	"github.com/FreePay/3cities-sub001/types"
)

var (
	testSender   = common.HexToAddress("0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	testReceiver = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
)

// testEngine builds an engine with a fixed clock and a quiescent oracle
// (hour-long debounce) so tests drive Recompute explicitly.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	return New(registry.Default(),
		WithClock(func() time.Time { return now }),
		WithOracleConfig(oracle.Config{
			DebounceInterval: time.Hour,
			MaxDebounceDelay: 2 * time.Hour,
		}),
	)
}

func feedRate(e *Engine, denominator, numerator types.Ticker, rate float64) {
	for _, source := range []string{"alpha", "beta"} {
		e.oracle.Observe(types.RateObservation{
			DenominatorTicker: denominator,
			NumeratorTicker:   numerator,
			Rate:              rate,
			Source:            source,
			Timestamp:         e.now(),
		})
	}
	e.oracle.Recompute()
}

func usd(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(types.LogicalAssetDecimals), nil))
}

func tokenOn(t *testing.T, e *Engine, ticker types.Ticker, chainID uint64) types.Token {
	t.Helper()
	for _, tok := range e.reg.Tokens() {
		if tok.Ticker == ticker && tok.ChainID == chainID {
			return tok
		}
	}
	t.Fatalf("no %s on chain %d", ticker, chainID)
	return types.Token{}
}

func TestEngineGeneratesAndSelectsBestStrategy(t *testing.T) {
	e := testEngine(t)
	feedRate(e, "ETH", "USD", 3000)

	pp := types.ProposedPayment{
		Receiver:         types.NewAddressReceiver(testReceiver),
		PrimaryTicker:    "USD",
		SecondaryTickers: []types.Ticker{"ETH"},
		Mode:             types.NewFixedAmountMode(usd(10)),
	}
	p, err := types.DerivePayment(pp, testReceiver, nil)
	require.NoError(t, err)
	e.SetPayment(p, types.ReceiverStrategyPreferences{})

	e.Connect(testSender)
	gen, _, _ := e.tracker.Generation()
	usdcOP := tokenOn(t, e, "USDC", registry.ChainOptimism)
	ethMainnet := tokenOn(t, e, "ETH", registry.ChainEthereum)

	// 12 USDC covers the $10 payment; 0.003 ETH falls ~$1 short of the
	// 0.003333... ETH required at 3000 USD/ETH.
	e.tracker.Apply(gen, usdcOP, big.NewInt(12_000_000))
	e.tracker.Apply(gen, ethMainnet, big.NewInt(3_000_000_000_000_000))
	e.regenerate()

	var update StrategiesUpdate
	e.Subscribe(func(u StrategiesUpdate) { update = u })

	require.False(t, update.Loading)
	require.NotEmpty(t, update.Strategies)
	require.NotNil(t, update.Selected)

	// The only affordable strategy leads and is auto-selected.
	best := update.Strategies[0]
	require.Equal(t, usdcOP.Key(), best.Key())
	require.Equal(t, usdcOP.Key(), update.Selected.Key())
	require.Equal(t, big.NewInt(10_000_000), best.TokenTransfer.Amount)
	require.Equal(t, testSender, best.TokenTransfer.Sender)
	require.Equal(t, testReceiver, best.TokenTransfer.Receiver)

	// The nearly-affordable ETH strategy outranks tokens with no balance
	// at all: $1 short beats $10 short.
	next := update.Strategies[1]
	require.Equal(t, ethMainnet.Key(), next.Key())
	require.Equal(t, big.NewInt(3_333_333_333_333_333), next.TokenTransfer.Amount)
}

func TestEngineManualSelectionAndChainDisable(t *testing.T) {
	e := testEngine(t)
	feedRate(e, "ETH", "USD", 3000)

	pp := types.ProposedPayment{
		Receiver:         types.NewAddressReceiver(testReceiver),
		PrimaryTicker:    "USD",
		SecondaryTickers: []types.Ticker{"ETH"},
		Mode:             types.NewFixedAmountMode(usd(10)),
	}
	p, err := types.DerivePayment(pp, testReceiver, nil)
	require.NoError(t, err)
	e.SetPayment(p, types.ReceiverStrategyPreferences{})

	e.Connect(testSender)
	gen, _, _ := e.tracker.Generation()
	usdcOP := tokenOn(t, e, "USDC", registry.ChainOptimism)
	ethMainnet := tokenOn(t, e, "ETH", registry.ChainEthereum)
	e.tracker.Apply(gen, usdcOP, big.NewInt(12_000_000))
	e.tracker.Apply(gen, ethMainnet, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	e.regenerate()

	require.NoError(t, e.SelectStrategy(ethMainnet.Key()))
	cur, ok := e.Current()
	require.True(t, ok)
	require.Equal(t, ethMainnet.Key(), cur.Key())

	// A fee-unaffordable report on mainnet drops its strategies and falls
	// back to the best remaining one.
	e.ReportFeeUnaffordable(registry.ChainEthereum)
	cur, ok = e.Current()
	require.True(t, ok)
	require.Equal(t, usdcOP.Key(), cur.Key())
	for _, s := range e.selector.Strategies() {
		require.NotEqual(t, registry.ChainEthereum, s.ChainID())
	}

	// Strategies on a disabled chain never come back, even on regenerate.
	e.regenerate()
	for _, s := range e.selector.Strategies() {
		require.NotEqual(t, registry.ChainEthereum, s.ChainID())
	}
}

func TestEngineSigningLocksSelection(t *testing.T) {
	e := testEngine(t)
	feedRate(e, "ETH", "USD", 3000)

	pp := types.ProposedPayment{
		Receiver:      types.NewAddressReceiver(testReceiver),
		PrimaryTicker: "USD",
		Mode:          types.NewFixedAmountMode(usd(10)),
	}
	p, err := types.DerivePayment(pp, testReceiver, nil)
	require.NoError(t, err)
	e.SetPayment(p, types.ReceiverStrategyPreferences{})

	e.Connect(testSender)
	gen, _, _ := e.tracker.Generation()
	usdcOP := tokenOn(t, e, "USDC", registry.ChainOptimism)
	daiOP := tokenOn(t, e, "DAI", registry.ChainOptimism)
	e.tracker.Apply(gen, usdcOP, big.NewInt(12_000_000))
	e.tracker.Apply(gen, daiOP, usd(12))
	e.regenerate()

	e.BeginSigning()

	err = e.SelectStrategy(daiOP.Key())
	var cerr *types.CheckoutError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, types.ErrSelectionLocked, cerr.Code)

	// Updates while locked must not move the selection either.
	before, _ := e.Current()
	e.regenerate()
	after, ok := e.Current()
	require.True(t, ok)
	require.Equal(t, before.Key(), after.Key())
}

func TestProposedStrategiesWithoutWallet(t *testing.T) {
	e := testEngine(t)
	feedRate(e, "ETH", "USD", 3000)

	e.SetProposedPayment(types.ProposedPayment{
		Receiver:      types.NewENSReceiver("store.eth"),
		PrimaryTicker: "USD",
		Mode:          types.NewFixedAmountMode(usd(25)),
	}, types.ReceiverStrategyPreferences{})

	proposed := e.ProposedStrategies()
	require.NotEmpty(t, proposed)
	for _, ps := range proposed {
		require.Equal(t, types.ReceiverENS, ps.ProposedTokenTransfer.Receiver.Kind)
		require.Positive(t, ps.ProposedTokenTransfer.Amount.Sign())
	}
}

func TestEngineLoadingState(t *testing.T) {
	e := testEngine(t)

	var update StrategiesUpdate
	e.Subscribe(func(u StrategiesUpdate) { update = u })
	e.regenerate()
	require.True(t, update.Loading, "no rates yet and within the startup grace period")
	require.Empty(t, update.Strategies)

	feedRate(e, "ETH", "USD", 3000)
	e.regenerate()
	require.False(t, update.Loading, "a published rate table ends loading")
}

func TestParseEngineConfig(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(`{
		"maxRateAgeMs": 60000,
		"defaultRateQuorum": 2,
		"debounceMs": 100,
		"maxDebounceMs": 400,
		"gracePeriodMs": 3000,
		"logLevel": "info"
	}`))
	require.NoError(t, err)
	require.Equal(t, 2, cfg.DefaultRateQuorum)
	require.NotEmpty(t, cfg.Options())

	for name, raw := range map[string]string{
		"malformed json":     `{"maxRateAgeMs": `,
		"negative age":       `{"maxRateAgeMs": -1}`,
		"negative quorum":    `{"defaultRateQuorum": -1}`,
		"max below debounce": `{"debounceMs": 400, "maxDebounceMs": 100}`,
		"unknown log level":  `{"logLevel": "verbose"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEngineConfig([]byte(raw))
			var cerr *types.CheckoutError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, types.ErrInvalidConfig, cerr.Code)
		})
	}
}
