package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Parameter is one entry in the SMHI metobs measurement-parameter catalog.
// Keys are numeric but transmitted as strings ("1", "2", ... "40").
type Parameter struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// NumericKey parses the catalog key as an integer. Catalog listings sort by
// this value, not by the string form, so that "10" sorts after "2".
func (p Parameter) NumericKey() (int, error) {
	return strconv.Atoi(p.Key)
}

// Station is one measurement site as returned by the per-parameter station
// list. Name can be absent in partial responses. Updated is epoch milliseconds
// of the station's last data update.
type Station struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Updated int64  `json:"updated"`
}

// UpdatedTime converts the Updated epoch-millisecond timestamp to a UTC instant.
func (s Station) UpdatedTime() time.Time {
	return time.UnixMilli(s.Updated).UTC()
}

// ParameterCatalog is the /version/1.0 response envelope.
type ParameterCatalog struct {
	Resource []Parameter `json:"resource"`
}

// StationList is the /version/1.0/parameter/{id} response envelope.
type StationList struct {
	Station []Station `json:"station"`
}

// StationSummary is the station sub-object embedded in latest-day data
// responses. Retained whole on readings for provenance.
type StationSummary struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Owner     string  `json:"owner,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// ObservationValue is one measured value. Value arrives as a string and must
// be parsed; Quality is SMHI's quality-control code (G/Y/R).
type ObservationValue struct {
	Date    int64  `json:"date"`
	Value   string `json:"value"`
	Quality string `json:"quality,omitempty"`
}

// StationData is the /period/latest-day/data response envelope.
type StationData struct {
	Station StationSummary     `json:"station"`
	Value   []ObservationValue `json:"value"`
}

var (
	// ErrNoObservations means the response carried no value array, or an empty one.
	ErrNoObservations = errors.New("no observation values")
	// ErrBadValue means the first observation's value is absent or not a finite number.
	ErrBadValue = errors.New("observation value is not a finite number")
)

// ParseObservation extracts the first observation value from a latest-day
// response as a float64. Every failure mode is a named outcome: a missing or
// empty value array yields ErrNoObservations, and an absent, non-numeric, or
// non-finite value yields ErrBadValue. It never returns a zero-value
// temperature alongside a nil error.
func ParseObservation(data *StationData) (float64, error) {
	if data == nil || len(data.Value) == 0 {
		return 0, ErrNoObservations
	}
	raw := data.Value[0].Value
	if raw == "" {
		return 0, fmt.Errorf("%w: value is missing", ErrBadValue)
	}
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, raw)
	}
	if math.IsNaN(temp) || math.IsInf(temp, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, raw)
	}
	return temp, nil
}

// StationReading is one parsed, validated temperature attributed to a station
// at fetch time. Station keeps the raw sub-object the reading was derived from.
type StationReading struct {
	Key         string
	Name        string
	Temperature float64
	Station     StationSummary
}
