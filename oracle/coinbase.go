package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/FreePay/3cities-sub001/types"
)

const coinbaseSpotURL = "https://api.coinbase.com/v2/prices/%s-%s/spot"

// CoinbaseSource quotes a pair from the Coinbase spot price API.
type CoinbaseSource struct {
	pair     Pair
	interval time.Duration
	client   *http.Client
}

// NewCoinbaseSource builds a Coinbase source for 1 denominator ==
// rate numerator, e.g. denominator ETH, numerator USD.
func NewCoinbaseSource(denominator, numerator types.Ticker, interval time.Duration, client *http.Client) *CoinbaseSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &CoinbaseSource{
		pair:     Pair{Denominator: denominator, Numerator: numerator},
		interval: interval,
		client:   client,
	}
}

func (s *CoinbaseSource) Pair() Pair                     { return s.pair }
func (s *CoinbaseSource) Name() string                   { return "coinbase" }
func (s *CoinbaseSource) RefetchInterval() time.Duration { return s.interval }

func (s *CoinbaseSource) FetchRate(ctx context.Context) (float64, error) {
	url := fmt.Sprintf(coinbaseSpotURL, s.pair.Denominator, s.pair.Numerator)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coinbase spot price: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("coinbase spot price: decode: %w", err)
	}
	rate, err := strconv.ParseFloat(body.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("coinbase spot price: parse amount %q: %w", body.Data.Amount, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("coinbase spot price: non-positive rate %v", rate)
	}
	return rate, nil
}
