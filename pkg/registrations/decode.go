package registrations

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

// maxCount is the first count that no longer fits an int.
const maxCount = float64(math.MaxInt)

// DecodeSnapshot parses a JSON object of event name to count, keeping the
// document order of the keys.
func DecodeSnapshot(body []byte) (eventboard.Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, &eventboard.DecodeError{Reason: "response is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &eventboard.DecodeError{Reason: fmt.Sprintf("expected a JSON object, got %s", root.Type)}
	}

	var (
		entries []eventboard.Entry
		failure error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			failure = &eventboard.DecodeError{Reason: fmt.Sprintf("count for %q is %s, not a number", key.String(), value.Type)}
			return false
		}
		count, err := decodeCount(key.String(), value)
		if err != nil {
			failure = err
			return false
		}
		entries = append(entries, eventboard.Entry{Name: key.String(), Count: count})
		return true
	})
	if failure != nil {
		return nil, failure
	}
	snapshot, err := eventboard.NewSnapshot(entries...)
	if err != nil {
		return nil, &eventboard.DecodeError{Reason: "invalid snapshot", Err: err}
	}
	return snapshot, nil
}

// decodeCount accepts any non-negative JSON number. Fractions are rounded to
// the nearest whole registration; integers are read from the raw text so large
// values stay exact.
func decodeCount(name string, value gjson.Result) (int, error) {
	n := value.Float()
	switch {
	case n < 0:
		return 0, &eventboard.DecodeError{Reason: fmt.Sprintf("count for %q is negative: %s", name, value.Raw)}
	case n >= maxCount:
		return 0, &eventboard.DecodeError{Reason: fmt.Sprintf("count for %q is out of range: %s", name, value.Raw)}
	case n != math.Trunc(n):
		return int(math.Round(n)), nil
	}
	return int(value.Int()), nil
}
