package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CoerceBool maps a loosely typed JSON value to a bool.
//
//	true / false      as given
//	"true" "1" "on"   true (on is case-insensitive)
//	any other string  false
//	1                 true, any other number false
//	null, absent, other types: fallback
func CoerceBool(raw json.RawMessage, fallback bool) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}

	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || strings.EqualFold(t, "on")
	case float64:
		return t == 1
	default:
		return fallback
	}
}

// CoerceTicketLimit parses maxTicketsPerUser. Non-numeric, zero and negative
// values clamp to 1; fractions are floored.
func CoerceTicketLimit(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 1
	}

	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		n = f
	case bool:
		if t {
			n = 1
		}
	default:
		return 1
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(n))
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDeadline decodes a registration deadline. JSON null and "" clear it.
func ParseDeadline(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, ErrInvalidDeadline
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDeadline
}
