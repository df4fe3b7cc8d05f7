package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"agency/internal/core"
	"agency/internal/docstore"
)

// now is swapped in tests.
var now = time.Now

// Epoch bounds of 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp converts a date-like value to the canonical timestamp. Canonical
// timestamps pass through unchanged.
func Timestamp(v any) (docstore.Timestamp, error) {
	ts, err := OptionalTimestamp(v)
	if err != nil {
		return docstore.Timestamp{}, err
	}
	if ts == nil {
		return docstore.Timestamp{}, fmt.Errorf("%w: missing value", core.ErrInvalidTimestamp)
	}
	return *ts, nil
}

// OptionalTimestamp is Timestamp for fields that may be absent: nil, a blank
// string or a zero time yield nil.
func OptionalTimestamp(v any) (*docstore.Timestamp, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case docstore.Timestamp:
		return &x, nil
	case *docstore.Timestamp:
		return x, nil
	case time.Time:
		return fromTime(x), nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return fromTime(*x), nil
	case string:
		return parseTime(x)
	case float64:
		return fromMillis(x)
	case int64:
		return fromMillis(float64(x))
	case int:
		return fromMillis(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %q", core.ErrInvalidTimestamp, x.String())
		}
		return fromMillis(f)
	case map[string]any:
		return fromObject(x)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", core.ErrInvalidTimestamp, v)
	}
}

// creationStamp normalizes a creation time, defaulting to now when absent.
func creationStamp(v any) (docstore.Timestamp, error) {
	ts, err := OptionalTimestamp(v)
	if err != nil {
		return docstore.Timestamp{}, err
	}
	if ts == nil {
		return docstore.FromTime(now()), nil
	}
	return *ts, nil
}

func fromTime(t time.Time) *docstore.Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := docstore.FromTime(t)
	return &ts
}

func parseTime(s string) (*docstore.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrInvalidTimestamp, s)
}

func fromMillis(ms float64) (*docstore.Timestamp, error) {
	if math.IsNaN(ms) || ms < minEpochSeconds*1000 || ms > maxEpochSeconds*1000 {
		return nil, fmt.Errorf("%w: epoch millis %v out of range", core.ErrInvalidTimestamp, ms)
	}
	return fromTime(time.UnixMilli(int64(ms))), nil
}

// fromObject accepts a timestamp that went through JSON as {"seconds","nanos"}.
func fromObject(m map[string]any) (*docstore.Timestamp, error) {
	sec, ok := objectNumber(m["seconds"])
	if !ok {
		return nil, fmt.Errorf("%w: object without seconds", core.ErrInvalidTimestamp)
	}
	if math.IsNaN(sec) || sec < minEpochSeconds || sec > maxEpochSeconds {
		return nil, fmt.Errorf("%w: seconds %v out of range", core.ErrInvalidTimestamp, sec)
	}
	nanos, _ := objectNumber(m["nanos"])
	if nanos < 0 || nanos >= 1e9 {
		return nil, fmt.Errorf("%w: nanos out of range", core.ErrInvalidTimestamp)
	}
	return &docstore.Timestamp{Seconds: int64(sec), Nanos: int32(nanos)}, nil
}

func objectNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// timeOrNow is the read-side fallback for required fields missing at rest.
func timeOrNow(ts *docstore.Timestamp) time.Time {
	if ts == nil {
		return now().UTC()
	}
	return ts.Time()
}

func timePtr(ts *docstore.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time()
	return &t
}
