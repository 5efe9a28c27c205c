package explorer

import (
	"context"

	"github.com/shopspring/decimal"
)

// GasSpeed selects which oracle price tier to use.
type GasSpeed int

const (
	GasSpeedSafe GasSpeed = iota
	GasSpeedPropose
	GasSpeedFast
)

// GasOracle returns the current gas price oracle data.
func (c *Client) GasOracle(ctx context.Context) (GasOracle, error) {
	var oracle GasOracle
	if err := c.get(ctx, "gastracker", "gasoracle", nil, c.cfg.CacheTTL, &oracle); err != nil {
		return GasOracle{}, err
	}
	return oracle, nil
}

// EstimateGasPrice returns the oracle's gas price in gwei for a speed tier.
func (c *Client) EstimateGasPrice(ctx context.Context, speed GasSpeed) (decimal.Decimal, error) {
	oracle, err := c.GasOracle(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	switch speed {
	case GasSpeedFast:
		return oracle.FastGwei(), nil
	case GasSpeedPropose:
		return oracle.ProposeGwei(), nil
	default:
		return oracle.SafeGwei(), nil
	}
}
