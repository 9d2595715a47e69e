package otf_api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The upstream API renames fields between endpoint generations, so several
// models decode through a small alias table: each logical field lists the
// source keys it may appear under, tried in order. Unknown upstream fields
// are ignored; the API adds fields without notice.

type rawObject map[string]json.RawMessage

func parseObject(data []byte) (rawObject, error) {
	var o rawObject
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return o, nil
}

// get decodes the first present, non-null key into dst. Returns false when no
// key matched.
func (o rawObject) get(dst any, keys ...string) (bool, error) {
	for _, k := range keys {
		raw, ok := o[k]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return false, &ValidationError{Field: k, Cause: err}
		}
		return true, nil
	}
	return false, nil
}

// require is get for required fields: absence is a ValidationError naming the
// canonical (first) key.
func (o rawObject) require(dst any, keys ...string) error {
	ok, err := o.get(dst, keys...)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{Field: keys[0]}
	}
	return nil
}

// at walks a path of nested objects and decodes the leaf, the analogue of an
// alias path. Missing intermediate objects are not an error.
func (o rawObject) at(dst any, path ...string) (bool, error) {
	cur := o
	for i, k := range path {
		raw, ok := cur[k]
		if !ok || string(raw) == "null" {
			return false, nil
		}
		if i == len(path)-1 {
			if err := json.Unmarshal(raw, dst); err != nil {
				return false, &ValidationError{Field: strings.Join(path, "."), Cause: err}
			}
			return true, nil
		}
		next, err := parseObject(raw)
		if err != nil {
			return false, &ValidationError{Field: strings.Join(path[:i+1], "."), Cause: err}
		}
		cur = next
	}
	return false, nil
}

// envelope unwraps one level of response envelope, typically "data". A
// missing key is a ValidationError so callers never silently decode an empty
// payload.
func envelope(raw json.RawMessage, key string) (json.RawMessage, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	inner, ok := obj[key]
	if !ok {
		return nil, &ValidationError{Field: key}
	}
	return inner, nil
}

// LocalTime is a timestamp that may arrive with or without a timezone; the
// classes and bookings endpoints return wall-clock local times with no
// offset.
type LocalTime struct {
	time.Time
}

var localTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range localTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// parseClockDuration converts the performance API's "MM:SS" and "HH:MM:SS"
// display strings into a duration.
func parseClockDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("unrecognized clock value %q", s)
	}
	var total time.Duration
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	for i := 0; i < len(parts); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1-i]))
		if err != nil {
			return 0, fmt.Errorf("unrecognized clock value %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// ResultValue is a benchmark result that arrives as either a number or a
// display string depending on the challenge's unit.
type ResultValue string

func (v *ResultValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = ResultValue(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = ResultValue(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

const kilogramsPerPound = 0.45359237

// kgToPounds converts kilograms to pounds, used where the body composition
// endpoint reports metric values that every consumer expects in pounds.
func kgToPounds(kg float64) float64 {
	return kg / kilogramsPerPound
}
