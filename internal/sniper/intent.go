package sniper

import (
	"encoding/json"
	"strconv"
)

// BidIntent is the user's maximum-bid ceiling, parsed on demand from a
// favorite's free-text note. The note is expected to hold a small JSON
// object like {"max_bid": "12.50"}; anything else means no intent.
type BidIntent struct {
	MaxBid float64
}

// IntentOutcome distinguishes "user never asked" from "user asked badly":
// an absent intent is silent, a malformed one deserves a log line.
type IntentOutcome int

const (
	IntentAbsent IntentOutcome = iota
	IntentMalformed
	IntentValid
)

// ParseBidIntent extracts the bid intent from a favorite note. It never
// errors: unstructured user text is an expected input, not a failure.
func ParseBidIntent(note string) (BidIntent, IntentOutcome) {
	if note == "" {
		return BidIntent{}, IntentAbsent
	}

	var parsed struct {
		MaxBid any `json:"max_bid"`
	}
	if err := json.Unmarshal([]byte(note), &parsed); err != nil {
		return BidIntent{}, IntentAbsent
	}
	if parsed.MaxBid == nil {
		return BidIntent{}, IntentAbsent
	}

	var f float64
	switch v := parsed.MaxBid.(type) {
	case float64:
		f = v
	case string:
		var err error
		f, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return BidIntent{}, IntentMalformed
		}
	default:
		return BidIntent{}, IntentMalformed
	}

	// A zero ceiling reads as "no intent", not as a typo.
	if f == 0 {
		return BidIntent{}, IntentAbsent
	}
	if f < 0 {
		return BidIntent{}, IntentMalformed
	}
	return BidIntent{MaxBid: f}, IntentValid
}
