package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Client reads travels from the journal API. Calls go through a circuit
// breaker: after consecutive failures it fails fast until the API recovers.
// Nothing is retried.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) ClientOption {
	return func(c *Client) { c.http.Dial = dial }
}

// WithClientLogger sets the logger used for breaker transitions.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// Breaker tuning.
const (
	breakerTripAfter = 3
	breakerCooldown  = 15 * time.Second
)

// NewClient returns a client for the API at baseURL, e.g.
// "http://localhost:8080". A zero timeout means 10 seconds.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "wandering-tales-viewer"},
		timeout: timeout,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "journal-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// BreakerState exposes the breaker state for the status bar.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

// travelsPageSize is the largest page the API serves.
const travelsPageSize = 200

// Travels returns every published travel ordered by visit date, following
// the API's pages until the reported total is reached.
func (c *Client) Travels(ctx context.Context) ([]domain.Travel, error) {
	var all []domain.Travel
	for {
		body, err := c.get(ctx, fmt.Sprintf("/v1/travels?offset=%d&limit=%d", len(all), travelsPageSize))
		if err != nil {
			return nil, err
		}
		var page struct {
			Data       []domain.Travel `json:"data"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode travels: %w", err)
		}
		all = append(all, page.Data...)
		if len(page.Data) == 0 || len(all) >= page.Pagination.Total {
			return all, nil
		}
	}
}

// TravelByID returns a travel with its media, or nil if it does not exist.
func (c *Client) TravelByID(ctx context.Context, id string) (*domain.TravelDetail, error) {
	body, err := c.get(ctx, "/v1/travels/"+url.PathEscape(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d domain.TravelDetail
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decode travel %s: %w", id, err)
	}
	return &d, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		timeout := c.timeout
		if dl, ok := ctx.Deadline(); ok {
			if d := time.Until(dl); d < timeout {
				timeout = d
			}
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(c.baseURL + path)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set(fasthttp.HeaderAccept, "application/json")

		if err := c.http.DoTimeout(req, resp, timeout); err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}

		switch status := resp.StatusCode(); {
		case status == fasthttp.StatusNotFound:
			return nil, fmt.Errorf("GET %s: %w", path, domain.ErrNotFound)
		case status < 200 || status > 299:
			apiErr := &StatusError{Status: status}
			_ = json.Unmarshal(resp.Body(), apiErr)
			apiErr.Status = status
			return nil, apiErr
		}
		return append([]byte(nil), resp.Body()...), nil
	})
}
