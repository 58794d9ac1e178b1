package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastore4gh/datastore-gobackend/internal/config"
	"github.com/datastore4gh/datastore-gobackend/internal/models"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(&config.Config{
		PaystackSecretKey: "sk_test_abc",
		PaystackBaseURL:   baseURL,
		BaseURL:           "http://localhost:3000",
	})
	c.Retry.Sleep = func(time.Duration) {}
	return c
}

func initializeOK(reference string) map[string]interface{} {
	return map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"authorization_url": "https://checkout.paystack.com/" + reference,
			"access_code":       "ac_" + reference,
			"reference":         reference,
		},
	}
}

func TestInitializeSendsExpectedRequest(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(initializeOK("ref_123"))
	}))
	defer srv.Close()

	result, err := testClient(t, srv.URL).Initialize(context.Background(), "0241234567", "MTN-1GB", 530)
	require.NoError(t, err)
	assert.Equal(t, "ref_123", result.Reference)
	assert.Equal(t, "https://checkout.paystack.com/ref_123", result.AuthorizationURL)

	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.Equal(t, "0241234567@datastore4gh.com", gotBody["email"])
	assert.Equal(t, float64(530), gotBody["amount"])
	assert.Equal(t, "GHS", gotBody["currency"])
	assert.Equal(t, "http://localhost:3000/payment/success", gotBody["callback_url"])

	metadata, ok := gotBody["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0241234567", metadata["phone"])
	assert.Equal(t, "MTN-1GB", metadata["bundle"])
}

func TestInitializeRetriesTransientFailureThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(initializeOK("ref_123"))
	}))
	defer srv.Close()

	result, err := testClient(t, srv.URL).Initialize(context.Background(), "0241234567", "MTN-1GB", 530)
	require.NoError(t, err)
	assert.Equal(t, "ref_123", result.Reference)
	// succeeded on the second attempt, no third call
	assert.Equal(t, 2, attempts)
}

func TestInitializeDoesNotRetryAuthFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Initialize(context.Background(), "0241234567", "MTN-1GB", 530)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, 1, attempts)
}

func TestInitializeDoesNotRetryBadRequest(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid amount",
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Initialize(context.Background(), "0241234567", "MTN-1GB", 530)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Invalid amount", reqErr.Message)
	assert.Equal(t, 1, attempts)
}

func TestInitializeTreatsMalformedSuccessAsFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// status flag set but no authorization URL
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{},
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Initialize(context.Background(), "0241234567", "MTN-1GB", 530)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, attempts)
}

func TestInitializeSurfacesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(initializeOK("ref_123"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.http.Timeout = 20 * time.Millisecond

	_, err := c.Initialize(context.Background(), "0241234567", "MTN-1GB", 530)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GET", r.Method)
		require.Equal(t, "/transaction/verify/ref_123", r.URL.Path)
		require.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":    "success",
				"reference": "ref_123",
				"amount":    530,
			},
		})
	}))
	defer srv.Close()

	result, err := testClient(t, srv.URL).Verify(context.Background(), "ref_123")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "ref_123", result.Raw["reference"])
}

func TestVerifyMissingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"reference": "ref_123"},
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Verify(context.Background(), "ref_123")
	assert.ErrorContains(t, err, "missing transaction status")
}

func TestVerifyAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Verify(context.Background(), "ref_123")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, models.StatusCompleted, MapStatus("success"))
	assert.Equal(t, models.StatusFailed, MapStatus("failed"))
	assert.Equal(t, models.StatusFailed, MapStatus("abandoned"))
	assert.Equal(t, models.StatusFailed, MapStatus(""))
}
