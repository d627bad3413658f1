package tokenclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakepool-labs/staking-pool/internal/config"
)

func testConfig(endpoint string) *config.TokenServiceConfig {
	return &config.TokenServiceConfig{
		Endpoint:      endpoint,
		Timeout:       5 * time.Second,
		MaxRetryTimes: 3,
		RetryInterval: time.Millisecond,
	}
}

func TestTransfer(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		var got TransferCommand
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/transfers", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := NewTokenClient(testConfig(server.URL))
		cmd := TransferCommand{
			RequestID: "req-1",
			Recipient: "alice",
			Amount:    math.NewInt(1000),
			Memo:      "unstaking",
		}
		require.NoError(t, client.Transfer(context.Background(), cmd))
		assert.Equal(t, "req-1", got.RequestID)
		assert.Equal(t, "alice", got.Recipient)
		assert.Equal(t, "1000", got.Amount.String())
	})

	t.Run("retries on 5xx until accepted", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := NewTokenClient(testConfig(server.URL))
		err := client.Transfer(context.Background(), TransferCommand{RequestID: "req-2", Amount: math.NewInt(1)})
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewTokenClient(testConfig(server.URL))
		err := client.Transfer(context.Background(), TransferCommand{RequestID: "req-3", Amount: math.NewInt(1)})
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewTokenClient(testConfig(server.URL))
		err := client.Transfer(context.Background(), TransferCommand{RequestID: "req-4", Amount: math.NewInt(1)})
		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})
}
