package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/harrisonvanderbyl/stable-horde-bot/internal/adapter/metrics"
	"github.com/harrisonvanderbyl/stable-horde-bot/internal/domain"
	"github.com/sony/gobreaker"
)

const (
	findUserPath = "/find_user"
	transferPath = "/kudos/transfer"

	// insufficientFundsMessage is the ledger's 400 message for an overdrawn sender.
	insufficientFundsMessage = "Not enough kudos."

	maxErrorBody = 4 << 10
)

// Client calls the external kudos ledger. Calls are never retried: a transfer
// that timed out may still have been applied.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.LedgerMetrics
}

var _ domain.Ledger = (*Client)(nil)

// NewClient builds a ledger client. timeout bounds each HTTP call including
// reading the response body.
func NewClient(baseURL string, timeout time.Duration, m *metrics.LedgerMetrics) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrInsufficientFunds) ||
				errors.Is(err, domain.ErrLedgerAccountNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.BreakerState.Set(float64(to))
		},
	})

	return c
}

type findUserResponse struct {
	Username string `json:"username"`
}

type transferRequest struct {
	Username string `json:"username"`
	Amount   int    `json:"amount"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) LookupAccount(ctx context.Context, credential string) (string, error) {
	var username string
	err := c.call(ctx, "lookup", func() error {
		req, err := c.newRequest(ctx, http.MethodGet, findUserPath, credential, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return domain.ErrLedgerAccountNotFound
		case resp.StatusCode != http.StatusOK:
			return unexpectedStatus(resp)
		}

		var body findUserResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("%w: failed to decode find_user response: %w", domain.ErrLedgerUnavailable, err)
		}
		if body.Username == "" {
			return fmt.Errorf("%w: find_user returned no username", domain.ErrLedgerUnavailable)
		}
		username = body.Username
		return nil
	})
	return username, err
}

func (c *Client) Transfer(ctx context.Context, credential, toUsername string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	return c.call(ctx, "transfer", func() error {
		payload, err := json.Marshal(transferRequest{Username: toUsername, Amount: amount})
		if err != nil {
			return fmt.Errorf("failed to encode transfer request: %w", err)
		}

		req, err := c.newRequest(ctx, http.MethodPost, transferPath, credential, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
			return nil
		}

		if resp.StatusCode == http.StatusBadRequest {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			var e errorResponse
			if json.Unmarshal(body, &e) == nil && e.Message == insufficientFundsMessage {
				return domain.ErrInsufficientFunds
			}
			return fmt.Errorf("%w: status 400: %s", domain.ErrLedgerUnavailable, strings.TrimSpace(string(body)))
		}

		return unexpectedStatus(resp)
	})
}

// call runs fn through the breaker and records metrics. Everything that is
// not a known outcome is reported as domain.ErrLedgerUnavailable.
func (c *Client) call(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	c.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.Requests.WithLabelValues(operation, "ok").Inc()
		return nil
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.metrics.Requests.WithLabelValues(operation, "insufficient_funds").Inc()
		return err
	case errors.Is(err, domain.ErrLedgerAccountNotFound):
		c.metrics.Requests.WithLabelValues(operation, "not_found").Inc()
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.Requests.WithLabelValues(operation, "rejected").Inc()
		return fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	default:
		c.metrics.Requests.WithLabelValues(operation, "error").Inc()
		slog.WarnContext(ctx, "Ledger request failed", "operation", operation, "error", err)
		if !errors.Is(err, domain.ErrLedgerUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
		}
		return err
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, credential string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("apikey", credential)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: unexpected status %d: %s", domain.ErrLedgerUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
}

// CheckBreaker reports an error while the breaker is open. It never calls the ledger.
func (c *Client) CheckBreaker(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("ledger circuit breaker open: %w", domain.ErrLedgerUnavailable)
	}
	return nil
}
