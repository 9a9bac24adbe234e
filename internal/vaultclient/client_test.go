package vaultclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults/uniswap/my-vault/status", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		p := 2000.0
		json.NewEncoder(w).Encode(StatusResponse{
			Pool:   &PoolInfo{Address: "0xabc"},
			Prices: Prices{Current: PriceQuote{PT1T0: &p}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	status, err := c.Status(context.Background(), "uniswap", "my-vault")
	require.NoError(t, err)
	require.NotNil(t, status.Pool)
	assert.Equal(t, 2000.0, *status.Prices.Current.PT1T0)
}

func TestClient_Status_5xxIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Status(context.Background(), "uniswap", "my-vault")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
}

func TestClient_Rebalance_RevertedIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TxReceipt{Reverted: true, Reason: "slippage"})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Rebalance(context.Background(), "uniswap", "my-vault", RebalanceRequest{LowerPrice: 1, UpperPrice: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReverted))
}

func TestClient_Collect_4xxIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Collect(context.Background(), "uniswap", "my-vault")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermanent))
}
