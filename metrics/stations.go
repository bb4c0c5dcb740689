package metrics

import (
	"sort"
	"strings"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
)

// ============================================================================
// STATIONS AND ROUTES
// ============================================================================

// StationPeak is a station's busiest single clock time.
type StationPeak struct {
	Station string `json:"station"`
	Count   int    `json:"count"`
	Time    string `json:"time"`
}

// TopStations finds, per station, the clock time with the most journeys
// and returns the n stations with the highest such count (all when
// n <= 0). Departure side uses departure station and time, arrival side
// arrival station and time. Rows missing either are dropped. Ties keep
// first-seen order, both for stations and for times within a station.
func TopStations(rows []dataset.JourneyRow, side filter.Side, n int) []StationPeak {
	stationKey, timeKey := dataset.KeyDeparture, dataset.KeyDepartureTime
	if side == filter.Arrival {
		stationKey, timeKey = dataset.KeyArrival, dataset.KeyArrivalTime
	}

	view := dataset.JourneyAdapter.Bind(rows)
	var out []StationPeak
	for _, g := range engine.GroupAndAggregate(view, []string{stationKey, timeKey}, "", engine.AggCount, engine.SortNone, 0) {
		var best StationPeak
		for _, sg := range g.SubGroups {
			if sg.Count > best.Count {
				best = StationPeak{Station: g.Key, Count: sg.Count, Time: sg.Key}
			}
		}
		if best.Count > 0 {
			out = append(out, best)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Revenue is a keyed revenue total.
type Revenue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func revenueBy(rows []dataset.JourneyRow, key string) []Revenue {
	view := dataset.JourneyAdapter.Bind(rows)
	groups := engine.GroupAndAggregate(view, []string{key}, dataset.KeyPrice, engine.AggSum, engine.SortValueDesc, 0)
	out := make([]Revenue, 0, len(groups))
	for _, g := range groups {
		if g.Value > 0 {
			out = append(out, Revenue{Key: g.Key, Value: g.Value})
		}
	}
	return out
}

// StationRevenue sums ticket prices per departure or arrival station,
// descending. Missing or "undefined" stations and non-positive totals are
// dropped.
func StationRevenue(rows []dataset.JourneyRow, side filter.Side) []Revenue {
	if side == filter.Arrival {
		return revenueBy(rows, dataset.KeyArrival)
	}
	return revenueBy(rows, dataset.KeyDeparture)
}

// RouteRevenue sums ticket prices per "{departure} to {arrival}" route,
// descending. Rows missing a station and non-positive totals are dropped.
func RouteRevenue(rows []dataset.JourneyRow) []Revenue {
	return revenueBy(rows, dataset.KeyRoute)
}

// TopBottomRoutes returns the n highest-revenue routes, and the n lowest
// with the lowest first.
func TopBottomRoutes(rows []dataset.JourneyRow, n int) (top, bottom []Revenue) {
	all := RouteRevenue(rows)
	if n <= 0 {
		return []Revenue{}, []Revenue{}
	}
	k := n
	if k > len(all) {
		k = len(all)
	}
	top = append([]Revenue(nil), all[:k]...)
	bottom = make([]Revenue, 0, k)
	for i := len(all) - 1; i >= len(all)-k; i-- {
		bottom = append(bottom, all[i])
	}
	return top, bottom
}

// ============================================================================
// STATION FLOWS (parallel sets)
// ============================================================================

// FlowStages name the parallel-sets axes in order.
var FlowStages = []string{"Origin City", "Origin Station", "Destination Station", "Refund Result"}

// FlowLink counts journeys between two adjacent axis values.
type FlowLink struct {
	Stage  int    `json:"stage"` // index of the source axis
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// Flows is the parallel-sets view of journeys.
type Flows struct {
	Stages []string   `json:"stages"`
	Values [][]string `json:"values"` // distinct values per stage, first-seen
	Links  []FlowLink `json:"links"`
	Total  int        `json:"total"`
}

// OriginCity is the first word of a station name.
func OriginCity(station string) string {
	f := strings.Fields(station)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// StationFlows links origin city → origin station → destination station →
// refund result. Journeys are kept when the departure station starts with
// one of origins and the arrival station with one of destinations; an
// empty list accepts every station. Rows missing a station are dropped.
func StationFlows(rows []dataset.JourneyRow, origins, destinations []string) Flows {
	f := Flows{
		Stages: FlowStages,
		Values: make([][]string, len(FlowStages)),
		Links:  []FlowLink{},
	}
	for i := range f.Values {
		f.Values[i] = []string{}
	}

	type linkKey struct {
		stage          int
		source, target string
	}
	index := make(map[linkKey]int)
	seen := make([]map[string]bool, len(FlowStages))
	for i := range seen {
		seen[i] = make(map[string]bool)
	}

	for _, r := range rows {
		if !dataset.ValidStation(r.DepartureStation) || !dataset.ValidStation(r.ArrivalStation) {
			continue
		}
		if !hasPrefix(r.DepartureStation, origins) || !hasPrefix(r.ArrivalStation, destinations) {
			continue
		}
		refund := "Not Refunded"
		if r.RefundRequested {
			refund = "Refunded"
		}
		path := []string{OriginCity(r.DepartureStation), r.DepartureStation, r.ArrivalStation, refund}

		f.Total++
		for i, v := range path {
			if !seen[i][v] {
				seen[i][v] = true
				f.Values[i] = append(f.Values[i], v)
			}
			if i == 0 {
				continue
			}
			k := linkKey{stage: i - 1, source: path[i-1], target: v}
			if at, ok := index[k]; ok {
				f.Links[at].Count++
				continue
			}
			index[k] = len(f.Links)
			f.Links = append(f.Links, FlowLink{Stage: i - 1, Source: path[i-1], Target: v, Count: 1})
		}
	}

	sort.SliceStable(f.Links, func(i, j int) bool { return f.Links[i].Stage < f.Links[j].Stage })
	return f
}

func hasPrefix(s string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
