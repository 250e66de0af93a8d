package checkout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/FreePay/3cities-sub001/oracle"
	"github.com/FreePay/3cities-sub001/types"
)

var validate = validator.New()

// EngineConfig is the JSON-friendly engine configuration used by hosts
// that configure the engine from serialized settings rather than code.
type EngineConfig struct {
	MaxRateAgeMS      int    `json:"maxRateAgeMs" validate:"omitempty,gt=0"`
	DefaultRateQuorum int    `json:"defaultRateQuorum" validate:"omitempty,gt=0"`
	DebounceMS        int    `json:"debounceMs" validate:"omitempty,gt=0"`
	MaxDebounceMS     int    `json:"maxDebounceMs" validate:"omitempty,gtefield=DebounceMS"`
	GracePeriodMS     int    `json:"gracePeriodMs" validate:"omitempty,gt=0"`
	LogLevel          string `json:"logLevel" validate:"omitempty,oneof=debug info warn error"`
}

// ParseEngineConfig parses and validates an EngineConfig from JSON.
func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	var cfg EngineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrInvalidConfig,
			Message: fmt.Sprintf("failed to parse engine config: %v", err),
		}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrInvalidConfig,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	return &cfg, nil
}

// Options converts the config into engine options.
func (c *EngineConfig) Options() []Option {
	opts := []Option{
		WithOracleConfig(oracle.Config{
			MaxObservationAge: time.Duration(c.MaxRateAgeMS) * time.Millisecond,
			DefaultQuorum:     c.DefaultRateQuorum,
			DebounceInterval:  time.Duration(c.DebounceMS) * time.Millisecond,
			MaxDebounceDelay:  time.Duration(c.MaxDebounceMS) * time.Millisecond,
		}),
	}
	if c.GracePeriodMS > 0 {
		opts = append(opts, WithGracePeriod(time.Duration(c.GracePeriodMS)*time.Millisecond))
	}
	return opts
}
