package metrics

import (
	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/dataset"
)

// DelayStats is the revenue and refund split of one delay bucket.
type DelayStats struct {
	Bucket        string  `json:"bucket"`
	Journeys      int     `json:"journeys"`
	TotalRevenue  float64 `json:"totalRevenue"`
	Refund        float64 `json:"refund"`
	NetRevenue    float64 `json:"netRevenue"`
	RefundPercent float64 `json:"refundPercent"`
}

// DelayRefunds buckets Delayed journeys by arrival delay. Every bucket is
// returned, shortest first, even when empty. Rows with an unparseable time
// or a delay of 0 or less are dropped; unparsed prices count as 0.
// RefundPercent is 0 for a bucket without revenue.
func DelayRefunds(rows []dataset.JourneyRow) []DelayStats {
	out := make([]DelayStats, len(clock.DelayBuckets))
	for i, b := range clock.DelayBuckets {
		out[i].Bucket = b.Label
	}

	for _, r := range rows {
		if r.JourneyStatus != dataset.StatusDelayed {
			continue
		}
		d, ok := clock.Delay(r.ArrivalTime, r.ActualArrivalTime)
		if !ok {
			continue
		}
		for i, b := range clock.DelayBuckets {
			if !b.Contains(d) {
				continue
			}
			out[i].Journeys++
			out[i].TotalRevenue += r.Price.Or(0)
			out[i].Refund += r.RefundAmount()
			break
		}
	}

	for i := range out {
		out[i].NetRevenue = out[i].TotalRevenue - out[i].Refund
		out[i].RefundPercent = percent(out[i].Refund, out[i].TotalRevenue)
	}
	return out
}

// percent is part/whole*100, 0 when whole is 0.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
