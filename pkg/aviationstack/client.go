package aviationstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"tixgo/pkg/logger"

	"golang.org/x/time/rate"
)

// ErrRequestFailed marks every failure to obtain a usable response, whether
// transport, status or decoding.
var ErrRequestFailed = errors.New("aviationstack: request failed")

const DefaultSearchLimit = 50

type FlightsQuery struct {
	DepIATA      string
	ArrIATA      string
	FlightStatus string
	FlightIATA   string
	FlightDate   string
	Limit        int
}

func (q FlightsQuery) values(accessKey string) url.Values {
	v := url.Values{}
	v.Set("access_key", accessKey)
	if q.DepIATA != "" {
		v.Set("dep_iata", q.DepIATA)
	}
	if q.ArrIATA != "" {
		v.Set("arr_iata", q.ArrIATA)
	}
	if q.FlightStatus != "" {
		v.Set("flight_status", q.FlightStatus)
	}
	if q.FlightIATA != "" {
		v.Set("flight_iata", q.FlightIATA)
	}
	if q.FlightDate != "" {
		v.Set("flight_date", q.FlightDate)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type Options struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
	// RateLimit is requests per second; zero disables throttling.
	RateLimit float64
	Burst     int
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	limiter    *rate.Limiter
	logger     logger.Logger
}

func NewClient(httpClient *http.Client, opts Options, log logger.Logger) *Client {
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		accessKey:  opts.AccessKey,
		limiter:    limiter,
		logger:     log,
	}
}

// Flights calls GET /flights. Any failure is wrapped with ErrRequestFailed so
// callers never see a partially decoded payload.
func (c *Client) Flights(ctx context.Context, q FlightsQuery) (*FlightsResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrRequestFailed, err)
		}
	}

	endpoint := c.baseURL + "/flights?" + q.values(c.accessKey).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("aviationstack request failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "elapsed", Value: time.Since(start)},
		)
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	var apiResp FlightsResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && apiResp.Error != nil {
			apiErr.Code = apiResp.Error.Code
			apiErr.Message = apiResp.Error.Message
		}
		c.logger.Error("aviationstack returned non-success status",
			logger.Field{Key: "status", Value: resp.StatusCode},
			logger.Field{Key: "code", Value: apiErr.Code},
		)
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, apiErr)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRequestFailed, decodeErr)
	}

	if apiResp.Error != nil {
		apiResp.Error.StatusCode = resp.StatusCode
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, apiResp.Error)
	}

	c.logger.Debug("aviationstack flights fetched",
		logger.Field{Key: "count", Value: len(apiResp.Data)},
		logger.Field{Key: "elapsed", Value: time.Since(start)},
	)
	return &apiResp, nil
}
