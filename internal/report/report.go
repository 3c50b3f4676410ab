// Package report produces the two user-facing reports: the measurement
// parameter catalog and the highest/lowest current temperature among recently
// reporting stations.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ecerulm/data-engineer-assignment/internal/client"
	"github.com/ecerulm/data-engineer-assignment/internal/config"
	"github.com/ecerulm/data-engineer-assignment/internal/models"
	"github.com/ecerulm/data-engineer-assignment/internal/observability"
)

// TemperatureParameter is "Lufttemperatur, momentanvärde, 1 gång/tim" in the
// SMHI catalog: air temperature, instantaneous value, once per hour.
const TemperatureParameter = "2"

// Reporter runs the reports against a MetobsAPI and writes plain text to out.
// Operational detail (stale stations, bad values) goes to the logger only,
// never into the printed report.
type Reporter struct {
	api        client.MetobsAPI
	logger     *zap.Logger
	out        io.Writer
	now        func() time.Time
	staleAfter time.Duration
}

// NewReporter wires a Reporter. A nil out defaults to stdout, a nil logger to
// a no-op logger, and a non-positive staleAfter to the default window.
func NewReporter(api client.MetobsAPI, logger *zap.Logger, out io.Writer, staleAfter time.Duration) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	if staleAfter <= 0 {
		staleAfter = config.DefaultStaleAfter
	}
	return &Reporter{
		api:        api,
		logger:     logger,
		out:        out,
		now:        func() time.Time { return time.Now().UTC() },
		staleAfter: staleAfter,
	}
}

// ListParameters prints the parameter catalog, one line per parameter, sorted
// ascending by the numeric value of the key so that "10" prints after "2".
// Non-numeric keys sort after the numeric ones in their incoming order; the
// live catalog has none.
func (r *Reporter) ListParameters(ctx context.Context) error {
	params, err := r.api.GetParameters(ctx)
	if err != nil {
		return fmt.Errorf("fetch parameter catalog: %w", err)
	}

	sort.SliceStable(params, func(i, j int) bool {
		ki, erri := params[i].NumericKey()
		kj, errj := params[j].NumericKey()
		switch {
		case erri == nil && errj == nil:
			return ki < kj
		case erri == nil:
			return true
		default:
			return false
		}
	})

	for _, p := range params {
		fmt.Fprintf(r.out, "%3s, %s (%s)\n", p.Key, p.Title, p.Summary)
	}
	return nil
}

// TemperatureExtremes prints the warmest and coldest station among stations of
// the air-temperature parameter that reported within the staleness window.
//
// The station list is sorted by key before the scan and the extrema use strict
// comparisons, so on exact temperature ties the station with the smaller key
// wins deterministically. Station keys are compared as strings on purpose; the
// order only serves as a tie-break, not a numeric ranking.
func (r *Reporter) TemperatureExtremes(ctx context.Context) error {
	stations, err := r.api.GetStations(ctx, TemperatureParameter)
	if err != nil {
		return fmt.Errorf("fetch station list: %w", err)
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].Key < stations[j].Key
	})

	// One sample for the whole pass, so the recency cut is consistent.
	now := r.now()

	warmest := models.StationReading{Name: "N/A", Temperature: math.Inf(-1)}
	coldest := models.StationReading{Name: "N/A", Temperature: math.Inf(1)}
	eligible := 0

	for _, station := range stations {
		observability.StationsExaminedTotal.Inc()

		age := now.Sub(station.UpdatedTime())
		if age > r.staleAfter {
			observability.StationsSkippedTotal.WithLabelValues("stale").Inc()
			r.logger.Debug("station ignored, no recent update",
				zap.String("station", station.Name),
				zap.String("key", station.Key),
				zap.Duration("age", age))
			continue
		}

		reading, ok, err := r.stationReading(ctx, station)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		eligible++
		if reading.Temperature > warmest.Temperature {
			warmest = reading
		}
		if reading.Temperature < coldest.Temperature {
			coldest = reading
		}
	}

	if eligible == 0 {
		r.logger.Warn("no eligible stations, report contains placeholder values")
	}

	fmt.Fprintf(r.out, "Highest temperature: %s, %.1f degrees\n", warmest.Name, warmest.Temperature)
	fmt.Fprintf(r.out, "Lowest temperature: %s, %.1f degrees\n", coldest.Name, coldest.Temperature)
	return nil
}

// stationReading fetches one station's latest observation. Absence (false) is
// a normal outcome: the station has no data for the period or the value does
// not parse. Only transport failures are returned as errors and abort the scan.
func (r *Reporter) stationReading(ctx context.Context, station models.Station) (models.StationReading, bool, error) {
	status, data, err := r.api.GetLatestDayData(ctx, TemperatureParameter, station.Key)
	if err != nil {
		if errors.Is(err, client.ErrBadResponse) {
			observability.StationsSkippedTotal.WithLabelValues("bad_value").Inc()
			r.logger.Warn("can't get temperature for station",
				zap.String("station", stationLabel(station.Name)),
				zap.Error(err))
			return models.StationReading{}, false, nil
		}
		return models.StationReading{}, false, err
	}
	if status != http.StatusOK {
		observability.StationsSkippedTotal.WithLabelValues("no_data").Inc()
		r.logger.Debug("station has no data for period",
			zap.String("station", station.Key),
			zap.Int("status", status))
		return models.StationReading{}, false, nil
	}

	temp, err := models.ParseObservation(data)
	if err != nil {
		observability.StationsSkippedTotal.WithLabelValues("bad_value").Inc()
		r.logger.Warn("can't get temperature for station",
			zap.String("station", stationLabel(data.Station.Name)),
			zap.Error(err))
		return models.StationReading{}, false, nil
	}

	reading := models.StationReading{
		Key:         data.Station.Key,
		Name:        data.Station.Name,
		Temperature: temp,
		Station:     data.Station,
	}
	r.logger.Info("station reading",
		zap.String("station", reading.Name),
		zap.String("key", reading.Key),
		zap.Float64("temperature", reading.Temperature))
	return reading, true, nil
}

func stationLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
