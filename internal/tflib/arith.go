package tflib

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type daysToYearsParams struct {
	Divisor   float64 `mapstructure:"divisor"`
	Precision int32   `mapstructure:"precision"`
	Sentinel  int64   `mapstructure:"sentinel"`
}

// daysToYears returns nil for null input or the sentinel.
func daysToYears(args []any, params any) (any, error) {
	p := daysToYearsParams{Divisor: 365, Precision: 2, Sentinel: -999}
	if err := decodeParams("days_to_years", params, &p); err != nil {
		return nil, err
	}
	if p.Divisor == 0 {
		return nil, fmt.Errorf("days_to_years: divisor must not be zero")
	}
	v, err := one("days_to_years", args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return nil, fmt.Errorf("days_to_years: %w", err)
	}
	if d.Equal(decimal.NewFromInt(p.Sentinel)) {
		return nil, nil
	}
	years, _ := d.Div(decimal.NewFromFloat(p.Divisor)).RoundBank(p.Precision).Float64()
	return years, nil
}

type yearsToDaysParams struct {
	Multiplier     int64 `mapstructure:"multiplier"`
	SentinelIfNull int64 `mapstructure:"sentinel_if_null"`
}

// yearsToDays returns the sentinel for null input.
func yearsToDays(args []any, params any) (any, error) {
	p := yearsToDaysParams{Multiplier: 365, SentinelIfNull: -999}
	if err := decodeParams("years_to_days", params, &p); err != nil {
		return nil, err
	}
	v, err := one("years_to_days", args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return p.SentinelIfNull, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return nil, fmt.Errorf("years_to_days: %w", err)
	}
	return d.Mul(decimal.NewFromInt(p.Multiplier)).RoundBank(0).IntPart(), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%q is not a number", n)
		}
		return d, nil
	}
	return decimal.Decimal{}, fmt.Errorf("expected a number, got %T", v)
}
