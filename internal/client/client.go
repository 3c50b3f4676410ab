package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecerulm/data-engineer-assignment/internal/models"
	"github.com/ecerulm/data-engineer-assignment/internal/observability"
)

// MetobsAPI is the surface the report layer consumes.
type MetobsAPI interface {
	CheckConnection(ctx context.Context) (int, error)
	GetParameters(ctx context.Context) ([]models.Parameter, error)
	GetStations(ctx context.Context, parameterID string) ([]models.Station, error)
	GetLatestDayData(ctx context.Context, parameterID, stationKey string) (int, *models.StationData, error)
}

var (
	// ErrUpstreamStatus means an aggregate-level resource answered with a
	// status other than 200.
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	// ErrBadResponse means a 200 body could not be decoded.
	ErrBadResponse = errors.New("malformed upstream response")
)

// MetobsClient talks to the SMHI metobs open-data API. Every request path is
// built as baseURL + path + suffix, so callers must pass paths without the
// .json suffix. The client never retries and applies no policy beyond the
// transport timeout; status handling is the caller's concern where the API
// contract says so (per-station data fetches).
type MetobsClient struct {
	baseURL       string
	suffix        string
	client        *http.Client
	logger        *zap.Logger
	correlationID string
}

// NewMetobsClient validates the base URL and builds a client. An empty
// correlationID gets a fresh UUID; the ID is sent as X-Correlation-ID on every
// request so upstream access logs can be tied back to one run.
func NewMetobsClient(baseURL, suffix string, timeout time.Duration, logger *zap.Logger, correlationID string) (*MetobsClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return &MetobsClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		suffix:        suffix,
		logger:        logger,
		correlationID: correlationID,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CorrelationID returns the ID attached to every outgoing request.
func (c *MetobsClient) CorrelationID() string {
	return c.correlationID
}

// get performs one GET against baseURL + path + suffix. It only errors on
// transport failures; any response, 200 or not, is handed back to the caller.
func (c *MetobsClient) get(ctx context.Context, path, endpoint string) (*http.Response, error) {
	fullURL := c.baseURL + path + c.suffix
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		observability.APICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", c.correlationID)

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.APICallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.APICallDuration.WithLabelValues(endpoint).Observe(duration)
		return nil, fmt.Errorf("GET %s: %w", fullURL, err)
	}
	observability.APICallsTotal.WithLabelValues(endpoint, observability.StatusLabel(resp.StatusCode)).Inc()
	observability.APICallDuration.WithLabelValues(endpoint).Observe(duration)

	c.logger.Debug("api call",
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return resp, nil
}

// CheckConnection probes the bare base URL and returns the HTTP status code.
func (c *MetobsClient) CheckConnection(ctx context.Context) (int, error) {
	resp, err := c.get(ctx, "", "root")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// GetParameters fetches the measurement-parameter catalog. A non-200 status
// or an undecodable body is an error: the catalog is an aggregate-level
// resource and failures abort the run.
func (c *MetobsClient) GetParameters(ctx context.Context) ([]models.Parameter, error) {
	resp, err := c.get(ctx, "/version/1.0", "catalog")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d fetching parameter catalog", ErrUpstreamStatus, resp.StatusCode)
	}

	var catalog models.ParameterCatalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("%w: parameter catalog: %v", ErrBadResponse, err)
	}
	return catalog.Resource, nil
}

// GetStations fetches the station list for one parameter. Same failure policy
// as GetParameters.
func (c *MetobsClient) GetStations(ctx context.Context, parameterID string) ([]models.Station, error) {
	path := fmt.Sprintf("/version/1.0/parameter/%s", parameterID)
	resp, err := c.get(ctx, path, "stations")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d fetching stations for parameter %s", ErrUpstreamStatus, resp.StatusCode, parameterID)
	}

	var list models.StationList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: station list for parameter %s: %v", ErrBadResponse, parameterID, err)
	}
	return list.Station, nil
}

// GetLatestDayData fetches one station's latest-day observations. A non-200
// status is not an error here: stations routinely have no data for the period,
// so the caller gets (status, nil, nil) and branches. A 200 body that does not
// decode yields ErrBadResponse alongside the status.
func (c *MetobsClient) GetLatestDayData(ctx context.Context, parameterID, stationKey string) (int, *models.StationData, error) {
	path := fmt.Sprintf("/version/1.0/parameter/%s/station/%s/period/latest-day/data", parameterID, stationKey)
	resp, err := c.get(ctx, path, "latest_day_data")
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, nil
	}

	var data models.StationData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: latest-day data for station %s: %v", ErrBadResponse, stationKey, err)
	}
	return resp.StatusCode, &data, nil
}
