// Package relayer is the HTTP client of the multi-chain bundle relayer.
package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"multichain-settlement/config"
	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/metrics"

	"github.com/rs/zerolog"
)

const maxErrorBody = 4 << 10

// ErrMalformedResponse is returned when a 2xx body cannot be used.
var ErrMalformedResponse = errors.New("malformed relayer response")

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.RelayerClient.
type Client struct {
	baseURL    string
	apiKey     string
	appID      string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient builds a client for the configured environment. A nil httpClient
// gets a default one with the configured timeout.
func NewClient(cfg config.RelayerConfig, httpClient HTTPClient, log zerolog.Logger) (*Client, error) {
	endpoint, err := cfg.Active()
	if err != nil {
		return nil, err
	}
	if cfg.AppID == "" {
		return nil, errors.New("relayer app id is required")
	}
	if endpoint.APIKey == "" {
		return nil, fmt.Errorf("relayer api key is required for %s", cfg.Environment)
	}
	if _, err := url.ParseRequestURI(endpoint.URL); err != nil {
		return nil, fmt.Errorf("relayer url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(endpoint.URL, "/"),
		apiKey:     endpoint.APIKey,
		appID:      cfg.AppID,
		httpClient: httpClient,
		log:        log.With().Str("component", "relayer").Str("env", cfg.Environment).Logger(),
	}, nil
}

type bundleTransaction struct {
	Chain  int64  `json:"chain"`
	Target string `json:"target"`
	Data   string `json:"data"`
	Value  string `json:"value"`
}

type submitRequest struct {
	AppID             string              `json:"app_id"`
	Transactions      []bundleTransaction `json:"transactions"`
	PerformSimulation bool                `json:"perform_simulation"`
	VirtualNonceMode  string              `json:"virtual_nonce_mode"`
}

type submitResponse struct {
	BundleUUID string   `json:"bundle_uuid"`
	TxUUIDs    []string `json:"tx_uuids"`
}

type statusResponse struct {
	Transactions []struct {
		Status      string      `json:"status"`
		TxHash      string      `json:"tx_hash"`
		BlockNumber json.Number `json:"block_number"`
		Error       string      `json:"error"`
	} `json:"transactions"`
}

// SubmitBundle posts the bundle with simulation on. Any non-2xx status or an
// unusable body is an error; callers must not resubmit.
func (c *Client) SubmitBundle(ctx context.Context, calls []domain.BundleCall) (*domain.BundleReceipt, error) {
	if len(calls) == 0 {
		return nil, errors.New("empty bundle")
	}

	body := submitRequest{
		AppID:             c.appID,
		Transactions:      make([]bundleTransaction, len(calls)),
		PerformSimulation: true,
		VirtualNonceMode:  "Disabled",
	}
	for i, call := range calls {
		value := "0"
		if call.Value != nil {
			value = call.Value.String()
		}
		body.Transactions[i] = bundleTransaction{
			Chain:  call.ChainID,
			Target: strings.ToLower(call.Target.Hex()),
			Data:   call.Data,
			Value:  value,
		}
	}

	var resp submitResponse
	if err := c.do(ctx, "submit", http.MethodPost, "/v1/bundle/balance", body, &resp); err != nil {
		return nil, err
	}
	if resp.BundleUUID == "" {
		return nil, fmt.Errorf("%w: missing bundle_uuid", ErrMalformedResponse)
	}

	c.log.Info().
		Str("bundle_id", resp.BundleUUID).
		Int("transactions", len(calls)).
		Msg("Bundle submitted")

	return &domain.BundleReceipt{BundleID: resp.BundleUUID, TxIDs: resp.TxUUIDs}, nil
}

// BundleStatus returns the per-transaction reports in submission order.
func (c *Client) BundleStatus(ctx context.Context, bundleID string) ([]domain.TxReport, error) {
	var resp statusResponse
	path := "/v1/bundle/" + url.PathEscape(bundleID)
	if err := c.do(ctx, "status", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	reports := make([]domain.TxReport, len(resp.Transactions))
	for i, tx := range resp.Transactions {
		var block int64
		if tx.BlockNumber != "" {
			n, err := tx.BlockNumber.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: block_number %q", ErrMalformedResponse, tx.BlockNumber)
			}
			block = n
		}
		reports[i] = domain.TxReport{
			Status:      c.normalizeStatus(tx.Status),
			TxHash:      tx.TxHash,
			BlockNumber: block,
			Error:       tx.Error,
		}
	}
	return reports, nil
}

// normalizeStatus maps relayer spellings onto TxStatus. Unknown values are
// treated as still pending.
func (c *Client) normalizeStatus(s string) domain.TxStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "succeeded", "confirmed":
		return domain.TxStatusSuccess
	case "invalid":
		return domain.TxStatusInvalid
	case "reverted":
		return domain.TxStatusReverted
	case "cancelled", "canceled":
		return domain.TxStatusCancelled
	case "pending":
		return domain.TxStatusPending
	default:
		c.log.Debug().Str("status", s).Msg("Unknown relayer status, treating as pending")
		return domain.TxStatusPending
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RelayerRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal relayer request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create relayer request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relayer %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

// StatusError is a non-2xx relayer reply.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relayer %s returned %d: %s", e.Op, e.StatusCode, e.Body)
}
