// Package dataset holds the two immutable row sets the dashboard is built
// from: per-operator punctuality rows and per-journey ticket rows.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// JointUKFrance is the combined country label used by cross-channel operators.
const JointUKFrance = "UK/France"

// Journey status, ticket class and ticket type values.
const (
	StatusOnTime    = "On Time"
	StatusDelayed   = "Delayed"
	StatusCancelled = "Cancelled"

	ClassStandard = "Standard"
	ClassFirst    = "First Class"

	TypeAdvance = "Advance"
	TypeOffPeak = "Off-Peak"
	TypeAnytime = "Anytime"

	RailcardNone = "None"
)

var (
	Statuses      = []string{StatusOnTime, StatusDelayed, StatusCancelled}
	TicketClasses = []string{ClassStandard, ClassFirst}
	TicketTypes   = []string{TypeAdvance, TypeOffPeak, TypeAnytime}
	Railcards     = []string{RailcardNone, "Adult", "Disabled", "Senior"}
)

// ============================================================================
// NUMBER — explicit parse result instead of NaN
// ============================================================================

// Number is a numeric CSV field that may have failed to parse.
type Number struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NewNumber parses s into a Number.
func NewNumber(s string) Number {
	v, ok := ParseNumber(s)
	return Number{Value: v, Valid: ok}
}

// Or returns the value, or fallback when the field did not parse.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// ParseNumber parses a trimmed decimal field. Empty, non-numeric, NaN and
// infinite inputs report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ============================================================================
// OPERATOR ROWS
// ============================================================================

// OperatorRow is one rail operator's punctuality and service scores.
type OperatorRow struct {
	Country          string `json:"country"`
	Operator         string `json:"operator"`
	Punctuality      Number `json:"punctuality"`
	CancellationRate Number `json:"cancellationRate"`
	TicketPricePerKm Number `json:"ticketPricePerKm"`
	Compensation     Number `json:"compensationScore"`
	Booking          Number `json:"bookingScore"`
	NightTrain       Number `json:"nightTrainScore"`
	Cycling          Number `json:"cyclingScore"`
}

// CountryOperator is an operator row attributed to a single country.
// Joint is set when the row came from a UK/France operator.
type CountryOperator struct {
	Country string `json:"country"`
	Joint   bool   `json:"joint"`
	OperatorRow
}

// ExpandCountries attributes every row to its country. A UK/France row is
// emitted twice, once as UK and once as France, both marked Joint. Rows
// with an empty country are dropped.
func ExpandCountries(rows []OperatorRow) []CountryOperator {
	out := make([]CountryOperator, 0, len(rows))
	for _, r := range rows {
		country := strings.TrimSpace(r.Country)
		switch country {
		case "":
			continue
		case JointUKFrance:
			out = append(out,
				CountryOperator{Country: "UK", Joint: true, OperatorRow: r},
				CountryOperator{Country: "France", Joint: true, OperatorRow: r},
			)
		default:
			out = append(out, CountryOperator{Country: country, OperatorRow: r})
		}
	}
	return out
}

// ============================================================================
// JOURNEY ROWS
// ============================================================================

// JourneyRow is one ticket from the railway journeys dataset.
type JourneyRow struct {
	TransactionID     string `json:"transactionId,omitempty"`
	PurchaseType      string `json:"purchaseType,omitempty"`
	PaymentMethod     string `json:"paymentMethod,omitempty"`
	DepartureStation  string `json:"departureStation"`
	ArrivalStation    string `json:"arrivalStation"`
	DepartureTime     string `json:"departureTime"`
	ArrivalTime       string `json:"arrivalTime"`
	ActualArrivalTime string `json:"actualArrivalTime"`
	DateOfJourney     string `json:"dateOfJourney"`
	JourneyStatus     string `json:"journeyStatus"`
	TicketClass       string `json:"ticketClass"`
	TicketType        string `json:"ticketType"`
	Railcard          string `json:"railcard"`
	Price             Number `json:"price"`
	RefundRequested   bool   `json:"refundRequested"`
	ReasonForDelay    string `json:"reasonForDelay,omitempty"`
}

// Month is the YYYY-MM prefix of the journey date, or "" if the date is short.
func (j JourneyRow) Month() string {
	if len(j.DateOfJourney) < 7 {
		return ""
	}
	return j.DateOfJourney[:7]
}

// Route is the "{departure} to {arrival}" key. It reports false when either
// station is missing.
func (j JourneyRow) Route() (string, bool) {
	if !ValidStation(j.DepartureStation) || !ValidStation(j.ArrivalStation) {
		return "", false
	}
	return j.DepartureStation + " to " + j.ArrivalStation, true
}

// RefundAmount is the ticket price when a refund was requested, else 0.
func (j JourneyRow) RefundAmount() float64 {
	if !j.RefundRequested {
		return 0
	}
	return j.Price.Or(0)
}

// ValidStation rejects empty names and the literal "undefined".
func ValidStation(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "undefined"
}

// ParseRefund reads a "Refund Request" cell.
func ParseRefund(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "yes"
}

// ============================================================================
// DELAY REASONS
// ============================================================================

var reasonKeywords = []struct {
	keyword string
	label   string
}{
	{"signal", "Signal Failure"},
	{"staff", "Staffing"},
	{"weather", "Weather"},
	{"technical", "Technical Issue"},
	{"traffic", "Traffic"},
}

// ReasonUnknown labels journeys without a recorded reason.
const ReasonUnknown = "Unknown"

// NormalizeReason folds free-text delay reasons into a fixed set of labels:
// "Signal failure" and "Signal Failure" both become "Signal Failure".
// Unmatched text is returned trimmed.
func NormalizeReason(reason string) string {
	r := strings.TrimSpace(reason)
	if r == "" {
		return ReasonUnknown
	}
	lower := strings.ToLower(r)
	for _, k := range reasonKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.label
		}
	}
	return r
}
