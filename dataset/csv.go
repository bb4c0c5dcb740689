package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ============================================================================
// CSV LOADERS — CSV → DataFrame → typed rows
// ============================================================================
// Columns are located by header name, so column order in the file does not
// matter and extra columns are ignored. Type detection is off: every column
// is read as text and numeric fields go through ParseNumber.
// ============================================================================

// Operator CSV headers.
const (
	ColCountry      = "Country"
	ColOperator     = "Operator"
	ColPunctuality  = "Punctuality (%)"
	ColCancellation = "Cancellation Rate (%)"
	ColPricePerKm   = "Ticket Price (€/km)"
	ColCompensation = "Compensation Policy Score (/10)"
	ColBooking      = "Booking Experience Score (/10)"
	ColNightTrain   = "Night Train Offer Score (/10)"
	ColCycling      = "Cycling Policy Score (/10)"
)

// Journey CSV headers.
const (
	ColTransactionID = "Transaction ID"
	ColPurchaseType  = "Purchase Type"
	ColPaymentMethod = "Payment Method"
	ColRailcard      = "Railcard"
	ColTicketClass   = "Ticket Class"
	ColTicketType    = "Ticket Type"
	ColPrice         = "Price"
	ColDeparture     = "Departure Station"
	ColArrival       = "Arrival Destination"
	ColDate          = "Date of Journey"
	ColDepartureTime = "Departure Time"
	ColArrivalTime   = "Arrival Time"
	ColActualArrival = "Actual Arrival Time"
	ColStatus        = "Journey Status"
	ColReason        = "Reason for Delay"
	ColRefund        = "Refund Request"
)

var operatorColumns = []string{
	ColCountry, ColOperator, ColPunctuality, ColCancellation, ColPricePerKm,
	ColCompensation, ColBooking, ColNightTrain, ColCycling,
}

var journeyColumns = []string{
	ColRailcard, ColTicketClass, ColTicketType, ColPrice, ColDeparture, ColArrival,
	ColDate, ColDepartureTime, ColArrivalTime, ColActualArrival, ColStatus,
	ColReason, ColRefund,
}

// ReadOperators parses the operator punctuality CSV.
func ReadOperators(r io.Reader) ([]OperatorRow, error) {
	records, cols, err := readRecords(r, operatorColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]OperatorRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, OperatorRow{
			Country:          cols.get(rec, ColCountry),
			Operator:         cols.get(rec, ColOperator),
			Punctuality:      NewNumber(cols.get(rec, ColPunctuality)),
			CancellationRate: NewNumber(cols.get(rec, ColCancellation)),
			TicketPricePerKm: NewNumber(cols.get(rec, ColPricePerKm)),
			Compensation:     NewNumber(cols.get(rec, ColCompensation)),
			Booking:          NewNumber(cols.get(rec, ColBooking)),
			NightTrain:       NewNumber(cols.get(rec, ColNightTrain)),
			Cycling:          NewNumber(cols.get(rec, ColCycling)),
		})
	}
	return rows, nil
}

// ReadJourneys parses the railway journeys CSV. Transaction ID, Purchase Type
// and Payment Method are optional.
func ReadJourneys(r io.Reader) ([]JourneyRow, error) {
	records, cols, err := readRecords(r, journeyColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]JourneyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, JourneyRow{
			TransactionID:     cols.get(rec, ColTransactionID),
			PurchaseType:      cols.get(rec, ColPurchaseType),
			PaymentMethod:     cols.get(rec, ColPaymentMethod),
			DepartureStation:  cols.get(rec, ColDeparture),
			ArrivalStation:    cols.get(rec, ColArrival),
			DepartureTime:     cols.get(rec, ColDepartureTime),
			ArrivalTime:       cols.get(rec, ColArrivalTime),
			ActualArrivalTime: cols.get(rec, ColActualArrival),
			DateOfJourney:     cols.get(rec, ColDate),
			JourneyStatus:     cols.get(rec, ColStatus),
			TicketClass:       cols.get(rec, ColTicketClass),
			TicketType:        cols.get(rec, ColTicketType),
			Railcard:          cols.get(rec, ColRailcard),
			Price:             NewNumber(cols.get(rec, ColPrice)),
			RefundRequested:   ParseRefund(cols.get(rec, ColRefund)),
			ReasonForDelay:    cols.get(rec, ColReason),
		})
	}
	return rows, nil
}

// ============================================================================
// COLUMN MAPPING
// ============================================================================

type columnIndex map[string]int

// get returns the trimmed cell for a header, "" when the column is absent.
// gota renders missing cells as "NaN"; those read back as empty.
func (c columnIndex) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if v == "NaN" {
		return ""
	}
	return v
}

func readRecords(r io.Reader, required []string) ([][]string, columnIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)

	var records [][]string
	if df.Err != nil {
		// gota refuses a frame with no rows; a lone header is an empty dataset.
		header, ok := headerOnly(data)
		if !ok {
			return nil, nil, fmt.Errorf("failed to parse CSV: %w", df.Err)
		}
		records = [][]string{header}
	} else {
		records = df.Records()
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("failed to parse CSV: no header row")
	}

	cols := make(columnIndex, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return records[1:], cols, nil
}

// headerOnly returns the header of a CSV that has no data rows.
func headerOnly(data []byte) ([]string, bool) {
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(recs) != 1 {
		return nil, false
	}
	return recs[0], true
}
