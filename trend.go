package dexshare

// TrendDirection is the rate-of-change of blood glucose at the time of a
// reading, one of the ten tokens the Share API may return.
type TrendDirection int

const (
	// TrendNone means no trend was reported.
	TrendNone TrendDirection = iota
	// TrendDoubleUp means glucose is rising quickly.
	TrendDoubleUp
	// TrendSingleUp means glucose is rising.
	TrendSingleUp
	// TrendFortyFiveUp means glucose is rising slightly.
	TrendFortyFiveUp
	// TrendFlat means glucose is steady.
	TrendFlat
	// TrendFortyFiveDown means glucose is falling slightly.
	TrendFortyFiveDown
	// TrendSingleDown means glucose is falling.
	TrendSingleDown
	// TrendDoubleDown means glucose is falling quickly.
	TrendDoubleDown
	// TrendNotComputable means the sensor could not determine a trend.
	TrendNotComputable
	// TrendRateOutOfRange means the rate of change exceeded what the sensor
	// can report.
	TrendRateOutOfRange
)

// trendTokens are the wire tokens, indexed by TrendDirection. The Share API
// used to return the bare index; it now returns the token.
var trendTokens = [...]string{
	"None",
	"DoubleUp",
	"SingleUp",
	"FortyFiveUp",
	"Flat",
	"FortyFiveDown",
	"SingleDown",
	"DoubleDown",
	"NotComputable",
	"RateOutOfRange",
}

// trendDescriptions are human-readable descriptions, ordered identically
// to trendTokens.
var trendDescriptions = [...]string{
	"",
	"rising quickly",
	"rising",
	"rising slightly",
	"steady",
	"falling slightly",
	"falling",
	"falling quickly",
	"unable to determine trend",
	"trend unavailable",
}

// trendArrows are unicode arrow glyphs, ordered identically to trendTokens.
var trendArrows = [...]string{"", "↑↑", "↑", "↗", "→", "↘", "↓", "↓↓", "?", "-"}

// ParseTrendDirection converts a wire token into a TrendDirection. An
// unrecognized token yields an ArgumentError with ReasonGlucoseReadingInvalid.
func ParseTrendDirection(token string) (TrendDirection, error) {
	for i, t := range trendTokens {
		if t == token {
			return TrendDirection(i), nil
		}
	}
	return TrendNone, &ArgumentError{Reason: ReasonGlucoseReadingInvalid}
}

// String returns the wire token for the trend direction.
func (t TrendDirection) String() string {
	if t < 0 || int(t) >= len(trendTokens) {
		return "None"
	}
	return trendTokens[t]
}

// Description returns a human-readable description of the trend, such as
// "steady" or "falling quickly".
func (t TrendDirection) Description() string {
	if t < 0 || int(t) >= len(trendDescriptions) {
		return ""
	}
	return trendDescriptions[t]
}

// Arrow returns the trend as a unicode arrow glyph, such as "→" or "↓↓".
func (t TrendDirection) Arrow() string {
	if t < 0 || int(t) >= len(trendArrows) {
		return ""
	}
	return trendArrows[t]
}
