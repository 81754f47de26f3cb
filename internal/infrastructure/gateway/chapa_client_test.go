package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equb_server/internal/config"
	"equb_server/pkg/errorx"
)

func newTestClient(url string, timeout time.Duration) *chapaClient {
	return &chapaClient{
		baseURL:    url,
		secretKey:  "sk-test",
		currency:   "ETB",
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func TestInitializeReturnsCheckoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tx-1", body["tx_ref"])
		assert.Equal(t, "100.00", body["amount"])

		_, _ = w.Write([]byte(`{"message":"Hosted Link","status":"success","data":{"checkout_url":"https://pay/x"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	res, err := c.Initialize(context.Background(), InitializeRequest{TxRef: "tx-1", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, "https://pay/x", res.CheckoutURL)
}

func TestTransferRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Insufficient balance","status":"failed","data":null}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	_, err := c.Transfer(context.Background(), TransferRequest{Reference: "payout-1", Amount: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.True(t, errorx.HasCode(err, errorx.CodeGatewayError))
	assert.Contains(t, err.Error(), "Insufficient balance")
}

func TestTransferTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Transfer(context.Background(), TransferRequest{Reference: "payout-2", Amount: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewFallsBackToMock(t *testing.T) {
	gw := New(&config.GatewayConfig{})
	_, ok := gw.(*localGateway)
	assert.True(t, ok)

	res, err := gw.Transfer(context.Background(), TransferRequest{Reference: "payout-3", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "payout-3", res.Reference)
}
