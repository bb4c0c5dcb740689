package dataset

import (
	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// RECORD VIEWS — engine adapters over typed rows
// ============================================================================

// Journey view keys.
const (
	KeyMonth         = "month"
	KeyDate          = "date"
	KeyStatus        = "status"
	KeyClass         = "class"
	KeyType          = "type"
	KeyRailcard      = "railcard"
	KeyDeparture     = "departure"
	KeyArrival       = "arrival"
	KeyDepartureTime = "departure_time"
	KeyArrivalTime   = "arrival_time"
	KeyRoute         = "route"
	KeyReason        = "reason"
	KeyRefunded      = "refunded"
	KeyPurchaseType  = "purchase_type"
	KeyPayment       = "payment_method"

	KeyPrice  = "price"
	KeyRefund = "refund"
	KeyDelay  = "delay"
)

// Country view keys.
const (
	KeyCountry      = "country"
	KeyOperator     = "operator"
	KeyPunctuality  = "punctuality"
	KeyCancellation = "cancellation"
	KeyPricePerKm   = "price_per_km"
	KeyCompensation = "compensation"
	KeyBooking      = "booking"
	KeyNightTrain   = "night_train"
	KeyCycling      = "cycling"
)

// JourneyAdapter exposes journey rows to the engine. "reason" is the
// normalized delay reason, "refund" the refunded amount (0 without a
// request), and "delay" the arrival delay in minutes.
var JourneyAdapter = engine.NewDomainAdapter[JourneyRow]().
	Dimension(KeyMonth, func(j JourneyRow) string { return j.Month() }).
	Dimension(KeyDate, func(j JourneyRow) string { return j.DateOfJourney }).
	Dimension(KeyStatus, func(j JourneyRow) string { return j.JourneyStatus }).
	Dimension(KeyClass, func(j JourneyRow) string { return j.TicketClass }).
	Dimension(KeyType, func(j JourneyRow) string { return j.TicketType }).
	Dimension(KeyRailcard, func(j JourneyRow) string { return j.Railcard }).
	Dimension(KeyDeparture, func(j JourneyRow) string { return stationKey(j.DepartureStation) }).
	Dimension(KeyArrival, func(j JourneyRow) string { return stationKey(j.ArrivalStation) }).
	Dimension(KeyDepartureTime, func(j JourneyRow) string { return j.DepartureTime }).
	Dimension(KeyArrivalTime, func(j JourneyRow) string { return j.ArrivalTime }).
	Dimension(KeyRoute, func(j JourneyRow) string { r, _ := j.Route(); return r }).
	Dimension(KeyReason, func(j JourneyRow) string { return NormalizeReason(j.ReasonForDelay) }).
	Dimension(KeyRefunded, func(j JourneyRow) string {
		if j.RefundRequested {
			return "Refunded"
		}
		return "Not Refunded"
	}).
	Dimension(KeyPurchaseType, func(j JourneyRow) string { return j.PurchaseType }).
	Dimension(KeyPayment, func(j JourneyRow) string { return j.PaymentMethod }).
	Measure(KeyPrice, func(j JourneyRow) (float64, bool) { return j.Price.Value, j.Price.Valid }).
	Measure(KeyRefund, func(j JourneyRow) (float64, bool) {
		if !j.RefundRequested {
			return 0, true
		}
		return j.Price.Value, j.Price.Valid
	}).
	Measure(KeyDelay, func(j JourneyRow) (float64, bool) {
		d, ok := clock.Delay(j.ArrivalTime, j.ActualArrivalTime)
		return float64(d), ok
	})

// CountryAdapter exposes country-attributed operator rows to the engine.
var CountryAdapter = engine.NewDomainAdapter[CountryOperator]().
	Dimension(KeyCountry, func(c CountryOperator) string { return c.Country }).
	Dimension(KeyOperator, func(c CountryOperator) string { return c.Operator }).
	Measure(KeyPunctuality, numberOf(func(c CountryOperator) Number { return c.Punctuality })).
	Measure(KeyCancellation, numberOf(func(c CountryOperator) Number { return c.CancellationRate })).
	Measure(KeyPricePerKm, numberOf(func(c CountryOperator) Number { return c.TicketPricePerKm })).
	Measure(KeyCompensation, numberOf(func(c CountryOperator) Number { return c.Compensation })).
	Measure(KeyBooking, numberOf(func(c CountryOperator) Number { return c.Booking })).
	Measure(KeyNightTrain, numberOf(func(c CountryOperator) Number { return c.NightTrain })).
	Measure(KeyCycling, numberOf(func(c CountryOperator) Number { return c.Cycling }))

func numberOf[T any](field func(T) Number) func(T) (float64, bool) {
	return func(row T) (float64, bool) {
		n := field(row)
		return n.Value, n.Valid
	}
}

// stationKey returns "" for stations that must not form a group.
func stationKey(s string) string {
	if !ValidStation(s) {
		return ""
	}
	return s
}
