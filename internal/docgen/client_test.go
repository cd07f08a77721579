package docgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateClosureReport(t *testing.T) {
	t.Run("returns the artifact url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/documents", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "closure_report", req["template"])
			assert.NotEmpty(t, req["case_id"])

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"url": "s3://casetrack/closures/x.pdf"})
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, nil)

		url, err := client.GenerateClosureReport(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "s3://casetrack/closures/x.pdf", url)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, nil)

		_, err := client.GenerateClosureReport(context.Background(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("empty url in the response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, nil)

		_, err := client.GenerateClosureReport(context.Background(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:          server.URL,
			FailureThreshold: 2,
			BreakerTimeout:   time.Minute,
		}, nil)

		_, err := client.GenerateClosureReport(context.Background(), uuid.New())
		require.Error(t, err)
		_, err = client.GenerateClosureReport(context.Background(), uuid.New())
		require.Error(t, err)

		// The breaker is open now; no further requests reach the server.
		_, err = client.GenerateClosureReport(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(2), calls.Load())
	})
}
