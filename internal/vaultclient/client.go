// Package vaultclient is the §4.I Vault HTTP Façade: a stateless typed
// client over the vault control service. All retry logic lives in the
// execution pipeline; this package only shapes requests/responses and
// classifies failures into transient/permanent/reverted.
package vaultclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is the surface the reconciler and pipeline depend on.
type Client interface {
	Status(ctx context.Context, dex, alias string) (*StatusResponse, error)
	Collect(ctx context.Context, dex, alias string) (*TxReceipt, error)
	Withdraw(ctx context.Context, dex, alias, mode string) (*TxReceipt, error)
	SwapExactIn(ctx context.Context, dex, alias string, req SwapExactInRequest) (*SwapExactInResponse, error)
	Rebalance(ctx context.Context, dex, alias string, req RebalanceRequest) (*TxReceipt, error)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a façade client. timeout covers the whole round trip; §5
// recommends ~55s for pipeline RPC and ~10s for status polls, left to the
// caller via a context deadline or a dedicated timeout argument.
func New(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("vaultclient: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("vaultclient: build request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("vaultclient: decode response from %s: %w", path, err)
		}
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrTransient, method, path, resp.StatusCode, string(raw))
	default:
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrPermanent, method, path, resp.StatusCode, string(raw))
	}
}

func (c *httpClient) Status(ctx context.Context, dex, alias string) (*StatusResponse, error) {
	path := fmt.Sprintf("/api/vaults/%s/%s/status", dex, alias)
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Collect(ctx context.Context, dex, alias string) (*TxReceipt, error) {
	path := fmt.Sprintf("/api/vaults/%s/%s/collect", dex, alias)
	var out TxReceipt
	if err := c.do(ctx, http.MethodPost, path, CollectRequest{Alias: alias}, &out); err != nil {
		return nil, err
	}
	if out.Reverted {
		return &out, fmt.Errorf("%w: %s", ErrReverted, out.Reason)
	}
	return &out, nil
}

func (c *httpClient) Withdraw(ctx context.Context, dex, alias, mode string) (*TxReceipt, error) {
	path := fmt.Sprintf("/api/vaults/%s/%s/withdraw", dex, alias)
	var out TxReceipt
	if err := c.do(ctx, http.MethodPost, path, WithdrawRequest{Alias: alias, Mode: mode}, &out); err != nil {
		return nil, err
	}
	if out.Reverted {
		return &out, fmt.Errorf("%w: %s", ErrReverted, out.Reason)
	}
	return &out, nil
}

func (c *httpClient) SwapExactIn(ctx context.Context, dex, alias string, req SwapExactInRequest) (*SwapExactInResponse, error) {
	path := fmt.Sprintf("/api/vaults/%s/%s/swap/exact-in", dex, alias)
	var out SwapExactInResponse
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if out.Reverted {
		return &out, fmt.Errorf("%w: %s", ErrReverted, out.Reason)
	}
	return &out, nil
}

func (c *httpClient) Rebalance(ctx context.Context, dex, alias string, req RebalanceRequest) (*TxReceipt, error) {
	path := fmt.Sprintf("/api/vaults/%s/%s/rebalance", dex, alias)
	var out TxReceipt
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if out.Reverted {
		return &out, fmt.Errorf("%w: %s", ErrReverted, out.Reason)
	}
	return &out, nil
}
