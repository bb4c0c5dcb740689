package metrics

import (
	"math"

	"github.com/spektr-org/railpulse/dataset"
)

// ============================================================================
// SIMILARITY — cosine similarity of country service vectors
// ============================================================================

// SimilarityKind tells computed values from display overrides.
type SimilarityKind string

const (
	Computed        SimilarityKind = "computed"
	DisplayOverride SimilarityKind = "display-override"
)

// SimilarityTarget is a country compared against the reference.
type SimilarityTarget struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// DefaultSimilarityTargets are compared against the UK by default.
var DefaultSimilarityTargets = []SimilarityTarget{
	{Code: "DE", Name: "Germany"},
	{Code: "FR", Name: "France"},
	{Code: "SE", Name: "Sweden"},
	{Code: "IT", Name: "Italy"},
	{Code: "PT", Name: "Portugal"},
	{Code: "PL", Name: "Poland"},
	{Code: "SK", Name: "Slovakia"},
	{Code: "NL", Name: "Netherlands"},
}

// Similarity is one reference→target link. Raw is the cosine similarity,
// Normalized its rescaling into [0.2, 1.0], and Value what should be shown.
type Similarity struct {
	Code       string         `json:"code"`
	Country    string         `json:"country"`
	Raw        float64        `json:"raw"`
	Normalized float64        `json:"normalized"`
	Value      float64        `json:"value"`
	Kind       SimilarityKind `json:"kind"`
}

// SimilarityHook post-processes similarities for display.
type SimilarityHook func([]Similarity) []Similarity

// CosineSimilarity is dot(a,b)/(|a||b|), 0 when either norm is 0 or the
// lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

// NormalizeSimilarities rescales sims into [0.2, 1.0] by min-max. When all
// values are equal every result is 1.0.
func NormalizeSimilarities(sims []float64) []float64 {
	out := make([]float64, len(sims))
	if len(sims) == 0 {
		return out
	}
	lo, hi := sims[0], sims[0]
	for _, s := range sims[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	for i, s := range sims {
		if hi == lo {
			out[i] = 1.0
		} else {
			out[i] = 0.2 + 0.8*(s-lo)/(hi-lo)
		}
	}
	return out
}

// ServiceVectorOf is the 4-dimensional vector compared between countries:
// punctuality, compensation, booking and cycling averages.
func ServiceVectorOf(s CountryStats) []float64 {
	return []float64{s.AvgPunctuality, s.AvgCompensation, s.AvgBooking, s.AvgCycling}
}

// CountrySimilarities compares the reference country's vector with each
// target. Countries without rows have a zero vector and similarity 0.
// Hooks run in order over the computed result.
func CountrySimilarities(rows []dataset.CountryOperator, reference string, targets []SimilarityTarget, hooks ...SimilarityHook) []Similarity {
	stats := CountryAverages(rows)
	vec := func(country string) []float64 {
		s, ok := stats[country]
		if !ok {
			return make([]float64, 4)
		}
		return ServiceVectorOf(s)
	}

	ref := vec(reference)
	raw := make([]float64, len(targets))
	for i, t := range targets {
		raw[i] = CosineSimilarity(ref, vec(t.Name))
	}
	norm := NormalizeSimilarities(raw)

	out := make([]Similarity, len(targets))
	for i, t := range targets {
		out[i] = Similarity{
			Code:       t.Code,
			Country:    t.Name,
			Raw:        raw[i],
			Normalized: norm[i],
			Value:      norm[i],
			Kind:       Computed,
		}
	}
	for _, h := range hooks {
		if h != nil {
			out = h(out)
		}
	}
	return out
}

// OverrideTable returns a hook that replaces each Value with a fixed,
// code-keyed display value (fallback for codes not in table). Raw and
// Normalized are kept.
func OverrideTable(table map[string]float64, fallback float64) SimilarityHook {
	return func(sims []Similarity) []Similarity {
		out := make([]Similarity, len(sims))
		for i, s := range sims {
			v, ok := table[s.Code]
			if !ok {
				v = fallback
			}
			s.Value = v
			s.Kind = DisplayOverride
			out[i] = s
		}
		return out
	}
}

// LegacyDisplayOverrides is the fixed legend table the flower chart has
// historically shown instead of computed values.
var LegacyDisplayOverrides = map[string]float64{
	"DE": 0.56, "FR": 0.7, "IT": 0.72, "SK": 0.69,
	"SE": 0.82, "PL": 0.76, "NL": 0.65, "PT": 0.75,
}
