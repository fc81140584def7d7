package filter

import "math"

// MaxEntries is the fixed capacity of a Store.
const MaxEntries = 1024

// Millis is an absolute server time in milliseconds.
type Millis int64

// MaxMinutes bounds every minute count accepted from an operator, so that
// now plus the converted duration always fits in a Millis.
const MaxMinutes = 1e12

// CheckMinutes rejects minute counts that are not finite or exceed MaxMinutes
// in either direction.
func CheckMinutes(minutes float64) error {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || math.Abs(minutes) > MaxMinutes {
		return ErrInvalidMinutes
	}
	return nil
}

// MinutesToMillis converts an operator-supplied minute count into
// milliseconds, saturating at the bounds of Millis. NaN converts to 0.
func MinutesToMillis(minutes float64) Millis {
	ms := minutes * 60 * 1000
	switch {
	case math.IsNaN(ms):
		return 0
	case ms >= math.MaxInt64:
		return math.MaxInt64
	case ms <= math.MinInt64:
		return math.MinInt64
	}
	return Millis(ms)
}

// addMillis returns t+d clamped to the range of Millis.
func addMillis(t, d Millis) Millis {
	sum := t + d
	if d > 0 && sum < t {
		return math.MaxInt64
	}
	if d < 0 && sum > t {
		return math.MinInt64
	}
	return sum
}

// Kind tags which payload of an Entry is live.
type Kind uint8

const (
	KindAddress Kind = iota
	KindIdentity
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

// tombstone is the compare value of an address entry that never matches
// real traffic and whose slot may be reused.
var tombstone = [4]byte{255, 255, 255, 255}

// Entry is one ban or mute rule. Exactly one payload is meaningful, selected
// by Kind: Mask/Compare for KindAddress, ID for KindIdentity.
type Entry struct {
	Kind Kind `json:"kind"`

	Mask    [4]byte `json:"mask"`
	Compare [4]byte `json:"compare"`

	ID uint64 `json:"id,omitempty"`

	Expiry    Millis `json:"expiry,omitempty"`
	HasExpiry bool   `json:"has_expiry"`
	Mute      bool   `json:"mute"`
	// ShadowMute only means something for identity mutes.
	ShadowMute bool `json:"shadow_mute"`
}

// NewAddressEntry builds an address entry from a parsed pattern.
func NewAddressEntry(mask, compare [4]byte) Entry {
	return Entry{Kind: KindAddress, Mask: mask, Compare: compare}
}

// NewIdentityEntry builds an identity ban (mute=false) or mute entry.
func NewIdentityEntry(id uint64, mute, shadow bool) Entry {
	return Entry{Kind: KindIdentity, ID: id, Mute: mute, ShadowMute: mute && shadow}
}

// WithExpiry returns a copy expiring at the given time.
func (e Entry) WithExpiry(at Millis) Entry {
	e.Expiry = at
	e.HasExpiry = true
	return e
}

// Expired reports whether a timed entry has run out at now.
func (e Entry) Expired(now Millis) bool {
	return e.HasExpiry && e.Expiry <= now
}

// Tombstoned reports whether the entry is a disabled address placeholder.
func (e Entry) Tombstoned() bool {
	return e.Kind == KindAddress && e.Compare == tombstone
}

// RemainingMinutes returns the time left before expiry. Permanent entries
// report ok=false.
func (e Entry) RemainingMinutes(now Millis) (minutes float64, ok bool) {
	if !e.HasExpiry {
		return 0, false
	}
	return float64(e.Expiry-now) / (60 * 1000), true
}
