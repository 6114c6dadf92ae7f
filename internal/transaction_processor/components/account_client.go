package components

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

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

const breakerName = "account-service"

// envelope mirrors the product service response body
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AccountClient calls the product service over HTTP. Each call is bounded by
// a timeout and guarded by a circuit breaker that only counts transport
// failures; business rejections pass through untouched.
type AccountClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ service.AccountClient = (*AccountClient)(nil)

func NewAccountClient(logger *slog.Logger, cfg config.AccountServiceConfig, httpClient *http.Client) *AccountClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &AccountClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		timeout: cfg.Timeout,
		logger:  logger,
	}

	threshold := cfg.BreakerFailureThreshold
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isBusinessError(err)
		},
	})
	metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))
	return c
}

func (c *AccountClient) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return c.call(ctx, "get_product", id, http.MethodGet, "/products/"+id.String(), nil)
}

func (c *AccountClient) UpdateBalance(ctx context.Context, id uuid.UUID, update product.BalanceUpdate) (*product.Product, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to encode balance update: %w", err)
	}
	return c.call(ctx, "update_balance", id, http.MethodPut, "/products/"+id.String()+"/balance", body)
}

func (c *AccountClient) call(ctx context.Context, op string, id uuid.UUID, method, path string, body []byte) (*product.Product, error) {
	start := time.Now()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, id, method, path, body)
	})
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		metrics.ObserveAccountServiceCall(op, "success", elapsed)
		return out.(*product.Product), nil
	case isBusinessError(err):
		metrics.ObserveAccountServiceCall(op, "rejected", elapsed)
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ObserveAccountServiceCall(op, "breaker_open", elapsed)
		c.logger.Warn("Account service call short-circuited", "operation", op, "product_id", id)
		return nil, fmt.Errorf("%w: circuit breaker open", service.ErrAccountServiceUnavailable)
	default:
		metrics.ObserveAccountServiceCall(op, "unavailable", elapsed)
		c.logger.Error("Account service call failed", "operation", op, "product_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", service.ErrAccountServiceUnavailable, err)
	}
}

func (c *AccountClient) do(ctx context.Context, id uuid.UUID, method, path string, body []byte) (*product.Product, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.CorrelationIDHeader, correlationID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 500 {
		return nil, fmt.Errorf("failed to decode product service response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusOK {
		var p product.Product
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		return &p, nil
	}
	return nil, statusError(resp.StatusCode, id, env)
}

// statusError maps a product service rejection onto the domain taxonomy
func statusError(status int, id uuid.UUID, env envelope) error {
	code, message := "", ""
	if env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}

	switch status {
	case http.StatusNotFound:
		return shared.ErrProductNotFound{ProductID: id}
	case http.StatusForbidden:
		return shared.ErrOverdueDebt{ProductID: id}
	case http.StatusConflict:
		// optimistic version clash; the caller may resubmit
		return shared.ErrInvalidTransaction{Reason: "Product balance changed concurrently, please retry"}
	case http.StatusBadRequest:
		if code == "INSUFFICIENT_BALANCE" {
			return shared.ErrInsufficientBalance{ProductID: id, Message: message}
		}
		if message == "" {
			message = "Product service rejected the request"
		}
		return shared.ErrInvalidTransaction{Reason: message}
	}
	return fmt.Errorf("product service returned status %d", status)
}

func isBusinessError(err error) bool {
	return errors.Is(err, shared.ErrProductNotFound{}) ||
		errors.Is(err, shared.ErrInsufficientBalance{}) ||
		errors.Is(err, shared.ErrInvalidTransaction{}) ||
		errors.Is(err, shared.ErrOverdueDebt{})
}
