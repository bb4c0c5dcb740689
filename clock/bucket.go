package clock

import (
	"fmt"
)

// Bucket is a named time-of-day period.
type Bucket string

const (
	All     Bucket = "ALL"
	AM      Bucket = "AM"
	PM      Bucket = "PM"
	Peak    Bucket = "Peak"
	OffPeak Bucket = "Off-Peak"
)

// Buckets lists every bucket in button order.
var Buckets = []Bucket{All, AM, PM, Peak, OffPeak}

// ParseBucket accepts a bucket name; the empty string means All.
func ParseBucket(s string) (Bucket, error) {
	if s == "" {
		return All, nil
	}
	for _, b := range Buckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown time bucket %q", s)
}

// Match reports whether the clock time t falls in bucket b.
// All matches everything; an unparseable time matches nothing else.
func Match(b Bucket, t string) bool {
	if b == All || b == "" {
		return true
	}
	h, ok := Hour(t)
	if !ok {
		return false
	}
	return MatchHour(b, h)
}

// MatchHour reports whether hour h (0..23) falls in bucket b.
func MatchHour(b Bucket, h int) bool {
	switch b {
	case All, "":
		return true
	case AM:
		return h >= 0 && h < 12
	case PM:
		return h >= 12 && h < 24
	case Peak:
		return isPeak(h)
	case OffPeak:
		return h >= 0 && h < 24 && !isPeak(h)
	}
	return false
}

// Classify returns every bucket t belongs to: All first, then AM or PM,
// then Peak or Off-Peak. An unparseable time belongs to All only.
func Classify(t string) []Bucket {
	h, ok := Hour(t)
	if !ok {
		return []Bucket{All}
	}
	out := []Bucket{All, AM, Peak}
	if h >= 12 {
		out[1] = PM
	}
	if !isPeak(h) {
		out[2] = OffPeak
	}
	return out
}

func isPeak(h int) bool {
	return (h >= 6 && h < 9) || (h >= 16 && h < 19)
}
