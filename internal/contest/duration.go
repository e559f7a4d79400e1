package contest

import (
	"strconv"
	"strings"
	"time"
)

const (
	// Trigger is the text that starts a contest in an idle channel.
	Trigger = "spam"

	DefaultDuration = 60 * time.Second
	MinDuration     = 10 * time.Second
	MaxDuration     = 60 * time.Minute

	// PinThreshold is the shortest contest whose announcement gets pinned.
	PinThreshold = 5 * time.Minute
)

// IsTrigger reports whether text asks for a contest.
func IsTrigger(text string) bool {
	return strings.Contains(strings.ToLower(text), Trigger)
}

// ParseDuration resolves the contest duration requested in text.
// The first whitespace separated token that parses as an unsigned 64-bit integer, optionally with
// one leading '+', is the proposal; it is used when it lies within [MinDuration, MaxDuration],
// otherwise DefaultDuration applies. Later tokens are not considered once a proposal has been found.
func ParseDuration(text string) time.Duration {
	for _, field := range strings.Fields(text) {
		seconds, err := strconv.ParseUint(strings.TrimPrefix(field, "+"), 10, 64)
		if err != nil {
			continue
		}
		if seconds < uint64(MinDuration/time.Second) || seconds > uint64(MaxDuration/time.Second) {
			return DefaultDuration
		}
		return time.Duration(seconds) * time.Second
	}
	return DefaultDuration
}

// ShouldPin reports whether a contest of duration d gets its announcement pinned.
func ShouldPin(d time.Duration) bool {
	return d >= PinThreshold
}
