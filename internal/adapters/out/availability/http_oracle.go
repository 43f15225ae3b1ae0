package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/request"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures HTTPOracle.
type HTTPOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond caps calls to the directory service. Zero disables the limit.
	RequestsPerSecond float64
}

// HTTPOracle queries the provider directory:
//
//	GET {BaseURL}/v1/providers/availability?kind=move&area=SW&postcode=SW1A+1AA
//
// and expects {"available": true|false}. 5xx answers and transport errors are
// retried with linear backoff.
type HTTPOracle struct {
	client  *http.Client
	baseURL *url.URL
	retries int
	limiter *rate.Limiter
	logger  *zap.Logger
}

type availabilityResponse struct {
	Available *bool `json:"available"`
}

func NewHTTPOracle(opts HTTPOptions, logger *zap.Logger) (*HTTPOracle, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, eris.Errorf("invalid provider directory url %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &HTTPOracle{
		client:  &http.Client{Timeout: opts.Timeout},
		baseURL: base,
		retries: opts.MaxRetries,
		limiter: limiter,
		logger:  logger.With(zap.String("component", "provider_directory")),
	}, nil
}

func (o *HTTPOracle) AreQualifiedProvidersAvailable(ctx context.Context, snapshot request.Snapshot) (bool, error) {
	target := o.baseURL.JoinPath("v1", "providers", "availability")
	target.RawQuery = availabilityQuery(snapshot).Encode()

	var lastErr error
	for attempt := range o.retries {
		if err := o.limiter.Wait(ctx); err != nil {
			return false, eris.Wrap(err, "rate limiter wait")
		}

		available, retry, err := o.call(ctx, target.String())
		if err == nil {
			return available, nil
		}
		lastErr = err
		if !retry {
			break
		}

		o.logger.Warn("provider directory call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false, eris.Wrap(ctx.Err(), "provider availability")
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}

	return false, eris.Wrap(lastErr, "provider availability")
}

// call reports whether a failure is worth retrying.
func (o *HTTPOracle) call(ctx context.Context, target string) (bool, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, false, eris.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return false, true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, true, fmt.Errorf("provider directory returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, false, fmt.Errorf("provider directory returned %d", resp.StatusCode)
	}

	var body availabilityResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, false, eris.Wrap(err, "decode availability response")
	}
	if body.Available == nil {
		return false, false, eris.New("availability response has no \"available\" field")
	}
	return *body.Available, false, nil
}

func availabilityQuery(snapshot request.Snapshot) url.Values {
	q := url.Values{}
	q.Set("kind", snapshot.Kind().String())
	q.Set("priority", snapshot.Priority().String())
	if postcode, ok := snapshot.PickupPostcode(); ok {
		q.Set("area", postcode.Area())
		q.Set("postcode", postcode.String())
	}
	if weight, ok := snapshot.TotalWeightKg(); ok {
		q.Set("weight_kg", weight.String())
	}
	if staff, ok := snapshot.StaffRequired(); ok {
		q.Set("staff", strconv.Itoa(staff))
	}
	if snapshot.RequiresSpecialHandling() {
		q.Set("special_handling", "true")
	}
	return q
}

// Static always gives the same answer. It stands in for the directory when no
// URL is configured.
type Static bool

func (s Static) AreQualifiedProvidersAvailable(context.Context, request.Snapshot) (bool, error) {
	return bool(s), nil
}
