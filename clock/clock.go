// Package clock parses "HH:MM" clock strings and classifies them into
// time-of-day buckets and delay buckets.
package clock

import (
	"strings"
)

const (
	minutesPerDay = 1440
	halfDay       = 720
)

// Hour returns the hour of an "HH:MM" string. Only the leading digits of the
// part before ':' are read, so "7:05" and "07" both give 7. Empty, non-numeric
// and out-of-range (not 0..23) hours report false.
func Hour(t string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(t), ":")
	h, ok := leadingInt(head)
	if !ok || h > 23 {
		return 0, false
	}
	return h, true
}

// Minutes returns minutes since midnight for an "HH:MM" string.
func Minutes(t string) (int, bool) {
	head, tail, found := strings.Cut(strings.TrimSpace(t), ":")
	if !found {
		return 0, false
	}
	h, ok := leadingInt(head)
	if !ok || h > 23 {
		return 0, false
	}
	m, ok := leadingInt(tail)
	if !ok || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Delay returns actual minus scheduled in minutes, corrected for midnight:
// a raw difference below -720 gets a day added, above 720 a day removed.
// "23:50" scheduled, "00:05" actual gives 15.
func Delay(scheduled, actual string) (int, bool) {
	s, ok := Minutes(scheduled)
	if !ok {
		return 0, false
	}
	a, ok := Minutes(actual)
	if !ok {
		return 0, false
	}
	d := a - s
	if d < -halfDay {
		d += minutesPerDay
	} else if d > halfDay {
		d -= minutesPerDay
	}
	return d, true
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(m int) string {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return string([]byte{
		byte('0' + m/60/10), byte('0' + m/60%10), ':',
		byte('0' + m%60/10), byte('0' + m%60%10),
	})
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if digits > 4 {
			return 0, false
		}
	}
	return n, digits > 0
}
