// Package client submits orders to a running storefront's relay endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"torta/internal/domain"
	"torta/internal/services"
)

const SubmitPath = "/api/submit-order"

type Client struct {
	baseURL    string
	orders     *services.OrderService
	httpClient *http.Client
}

// New validates orders with orders before sending them to baseURL.
func New(baseURL string, orders *services.OrderService) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		orders:     orders,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Result is the endpoint's success body.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RelayMessageID int64  `json:"relayMessageId"`
}

// APIError is a non-200 answer from the endpoint.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("submit order: %d %s", e.Status, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// SubmitOrder validates and resolves req locally and posts it once. An
// invalid order returns *services.ValidationError without network I/O.
func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (Result, error) {
	payload, err := c.orders.Prepare(req)
	if err != nil {
		return Result{}, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, errors.Wrap(err, "marshal order")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SubmitPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, errors.Wrap(err, "post order")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(raw, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return Result{}, apiErr
	}
	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, errors.Wrap(err, "decode response")
	}
	return out, nil
}
