// Package normalize coerces loosely typed input into the canonical documents
// written to the document store, and turns stored documents back into records.
//
// Monetary values are always numbers at rest and temporal values are always
// docstore.Timestamp. Optional temporal fields that were not supplied are
// stored as null, never as the current time.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"agency/internal/core"

	"github.com/shopspring/decimal"
)

// Amount coerces v to a number. Text may use a decimal comma ("150,50").
func Amount(v any) (float64, error) {
	d, ok, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: missing value", core.ErrInvalidAmount)
	}
	f, _ := d.Float64()
	return f, nil
}

// OptionalAmount is Amount for fields that may be absent. A nil result means
// no value was supplied.
func OptionalAmount(v any) (*float64, error) {
	d, ok, err := toDecimal(v)
	if err != nil || !ok {
		return nil, err
	}
	f, _ := d.Float64()
	return &f, nil
}

// toDecimal reports ok=false when v carries no value at all. Values that do
// not fit a float64 are rejected.
func toDecimal(v any) (decimal.Decimal, bool, error) {
	d, ok, err := decimalOf(v)
	if err != nil || !ok {
		return d, ok, err
	}
	if err := checkFinite(d); err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func checkFinite(d decimal.Decimal) error {
	if math.IsInf(d.InexactFloat64(), 0) {
		return fmt.Errorf("%w: %s out of range", core.ErrInvalidAmount, d.String())
	}
	return nil
}

func decimalOf(v any) (decimal.Decimal, bool, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false, nil
	case *float64:
		if x == nil {
			return decimal.Zero, false, nil
		}
		return fromFloat(*x)
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true, nil
	case int32:
		return decimal.NewFromInt32(x), true, nil
	case int64:
		return decimal.NewFromInt(x), true, nil
	case uint:
		return decimal.NewFromUint64(uint64(x)), true, nil
	case uint64:
		return decimal.NewFromUint64(x), true, nil
	case decimal.Decimal:
		return x, true, nil
	case json.Number:
		return parseAmount(x.String())
	case string:
		return parseAmount(x)
	default:
		return decimal.Zero, false, fmt.Errorf("%w: unsupported type %T", core.ErrInvalidAmount, v)
	}
}

func fromFloat(f float64) (decimal.Decimal, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false, fmt.Errorf("%w: %v", core.ErrInvalidAmount, f)
	}
	return decimal.NewFromFloat(f), true, nil
}

func parseAmount(s string) (decimal.Decimal, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return d, true, nil
}
