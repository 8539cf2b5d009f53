// Package reasoning provides the HTTP client for the external reasoning
// collaborator used when local heuristics cannot find a slot.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/application/services"
)

var (
	ErrUnavailable = errors.New("reasoning service unavailable")
	ErrBadResponse = errors.New("reasoning service returned an invalid response")
)

// Config configures the reasoning client.
type Config struct {
	URL              string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the standard client configuration.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
	}
}

// Client calls the external reasoning service over HTTP. Calls are
// wrapped in a circuit breaker and a timeout; an open breaker or a
// timeout surfaces like any other external failure.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*services.ReasoningProposal]
	logger     *slog.Logger
}

// NewClient creates a reasoning client.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}

	settings := gobreaker.Settings{
		Name:    "reasoning",
		Timeout: config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*services.ReasoningProposal](settings),
		logger:     logger,
	}
}

// ProposeSlot asks the reasoning service for a new start time, and
// optionally a bounded shift of one existing flexible block.
func (c *Client) ProposeSlot(ctx context.Context, req services.ReasoningRequest) (*services.ReasoningProposal, error) {
	proposal, err := c.breaker.Execute(func() (*services.ReasoningProposal, error) {
		return c.post(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) {
		return nil, ErrUnavailable
	}
	return proposal, err
}

func (c *Client) post(ctx context.Context, req services.ReasoningRequest) (*services.ReasoningProposal, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var proposal services.ReasoningProposal
	if err := json.NewDecoder(resp.Body).Decode(&proposal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if proposal.NewStart.IsZero() {
		return nil, fmt.Errorf("%w: missing new_start", ErrBadResponse)
	}
	return &proposal, nil
}
