package dexshare

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"time"
)

// systemTimePattern matches the vendor's encoded date strings, e.g.
// "Date(1691455258000-0400)": milliseconds since the epoch followed by a
// four-digit UTC offset.
var systemTimePattern = regexp.MustCompile(`^Date\((\d+)([+-]\d{4})\)$`)

// rawGlucoseReading is the subset of a Share API reading record the client
// models. Value arrives as a JSON number, Trend as a token from the fixed
// trend-direction set, DT as a vendor-encoded date string.
type rawGlucoseReading struct {
	Value json.Number `json:"Value"`
	Trend string      `json:"Trend"`
	DT    string      `json:"DT"`
}

// GlucoseReading is one blood-glucose reading as reported by the Share API.
// It is an immutable value: constructed once per response record and never
// mutated. The original raw record is retained for callers that need fields
// the client does not model.
type GlucoseReading struct {
	value      int
	trend      TrendDirection
	recordedAt time.Time
	raw        json.RawMessage
}

// newGlucoseReading parses one raw response record. A record missing required
// fields, with a non-integer value, an unrecognized trend token, or an
// unparsable timestamp fails with ReasonGlucoseReadingInvalid.
func newGlucoseReading(raw json.RawMessage) (GlucoseReading, error) {
	var rec rawGlucoseReading
	if err := json.Unmarshal(raw, &rec); err != nil {
		return GlucoseReading{}, &ArgumentError{Reason: ReasonGlucoseReadingInvalid}
	}

	value, err := integerValue(rec.Value)
	if err != nil {
		return GlucoseReading{}, &ArgumentError{Reason: ReasonGlucoseReadingInvalid}
	}

	trend, err := ParseTrendDirection(rec.Trend)
	if err != nil {
		return GlucoseReading{}, err
	}

	recordedAt, err := parseSystemTime(rec.DT)
	if err != nil {
		return GlucoseReading{}, err
	}

	return GlucoseReading{
		value:      value,
		trend:      trend,
		recordedAt: recordedAt,
		raw:        raw,
	}, nil
}

// integerValue coerces a JSON number to an int, accepting floats with a zero
// fractional part.
func integerValue(n json.Number) (int, error) {
	if v, err := n.Int64(); err == nil {
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// parseSystemTime decodes a "Date(<ms><±hhmm>)" string into a time.Time in
// the encoded fixed zone.
func parseSystemTime(s string) (time.Time, error) {
	m := systemTimePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &ArgumentError{Reason: ReasonGlucoseReadingInvalid}
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, &ArgumentError{Reason: ReasonGlucoseReadingInvalid}
	}

	offset := m[2]
	hours, _ := strconv.Atoi(offset[1:3])
	mins, _ := strconv.Atoi(offset[3:5])
	seconds := hours*3600 + mins*60
	if offset[0] == '-' {
		seconds = -seconds
	}

	return time.UnixMilli(ms).In(time.FixedZone(offset, seconds)), nil
}

// MgDL returns the blood glucose value in mg/dL.
func (g GlucoseReading) MgDL() int {
	return g.value
}

// MmolL returns the blood glucose value in mmol/L, rounded to one decimal.
func (g GlucoseReading) MmolL() float64 {
	return math.Round(float64(g.value)*mmolLConversionFactor*10) / 10
}

// Trend returns the glucose trend direction at the time of the reading.
func (g GlucoseReading) Trend() TrendDirection {
	return g.trend
}

// RecordedAt returns when the reading was recorded, in the zone the server
// reported it in.
func (g GlucoseReading) RecordedAt() time.Time {
	return g.recordedAt
}

// Raw returns the original response record. Callers must not modify it.
func (g GlucoseReading) Raw() json.RawMessage {
	return g.raw
}

// String returns the blood glucose value in mg/dL.
func (g GlucoseReading) String() string {
	return strconv.Itoa(g.value)
}
