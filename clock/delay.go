package clock

import (
	"fmt"
	"math"
)

// DelayBucket is a lateness range in minutes, exclusive of Min and
// inclusive of Max.
type DelayBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Contains reports whether Min < minutes <= Max.
func (b DelayBucket) Contains(minutes int) bool {
	m := float64(minutes)
	return m > b.Min && m <= b.Max
}

// DelayBuckets are the fixed lateness categories, shortest first.
var DelayBuckets = []DelayBucket{
	{Label: "<= 1 Min", Min: 0, Max: 1},
	{Label: "1 - 5 Mins", Min: 1, Max: 5},
	{Label: "5 - 15 Mins", Min: 5, Max: 15},
	{Label: "15 - 30 Mins", Min: 15, Max: 30},
	{Label: "30 - 60 Mins", Min: 30, Max: 60},
	{Label: "> 60 Mins", Min: 60, Max: math.Inf(1)},
}

// DelayBucketFor returns the bucket holding minutes. Zero or negative
// delays belong to no bucket.
func DelayBucketFor(minutes int) (DelayBucket, bool) {
	for _, b := range DelayBuckets {
		if b.Contains(minutes) {
			return b, true
		}
	}
	return DelayBucket{}, false
}

// ParseDelayBucket finds a bucket by label.
func ParseDelayBucket(label string) (DelayBucket, error) {
	for _, b := range DelayBuckets {
		if b.Label == label {
			return b, nil
		}
	}
	return DelayBucket{}, fmt.Errorf("unknown delay bucket %q", label)
}
