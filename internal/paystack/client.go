package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/datastore4gh/datastore-gobackend/internal/config"
	"github.com/datastore4gh/datastore-gobackend/internal/models"
	"github.com/datastore4gh/datastore-gobackend/internal/retry"
)

var (
	// ErrAuth means Paystack rejected the secret key. Never retried.
	ErrAuth = errors.New("paystack authentication failed")
	// ErrTimeout means the gateway did not answer within the attempt budget.
	ErrTimeout = errors.New("paystack request timed out")
	// ErrUnavailable covers transient failures that survived all retries.
	ErrUnavailable = errors.New("paystack unavailable")
)

// RequestError is a permanent 400 from the gateway. Its message is safe to
// forward to the caller.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return "paystack rejected the request: " + e.Message
}

// Client talks to the Paystack transaction API. Both operations are pure
// network calls; persistence is the caller's concern.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	http        *http.Client

	// Retry governs Initialize only. Exported so tests can zero the sleep.
	Retry retry.Policy
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		secretKey:   cfg.PaystackSecretKey,
		baseURL:     cfg.PaystackBaseURL,
		callbackURL: cfg.BaseURL + "/payment/success",
		http:        &http.Client{Timeout: 30 * time.Second},
		Retry: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff,
			IsRetryable: isTransient,
		},
	}
}

type InitResult struct {
	AuthorizationURL string
	Reference        string
}

type VerifyResult struct {
	Status string // gateway vocabulary, e.g. "success", "failed", "abandoned"
	Raw    map[string]interface{}
}

// Initialize creates a payment session for the given amount in pesewas and
// returns the hosted checkout URL plus the gateway reference. Transient
// failures are retried up to three attempts with exponential backoff; 401 and
// 400 fail immediately.
func (c *Client) Initialize(ctx context.Context, phone, bundle string, amount int64) (*InitResult, error) {
	payload := map[string]interface{}{
		"email":        phone + "@datastore4gh.com",
		"amount":       amount,
		"currency":     "GHS",
		"callback_url": c.callbackURL,
		"metadata": map[string]interface{}{
			"phone":  phone,
			"bundle": bundle,
			"custom_fields": []map[string]string{
				{"display_name": "Phone Number", "variable_name": "phone_number", "value": phone},
				{"display_name": "Data Bundle", "variable_name": "data_bundle", "value": bundle},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	var result *InitResult
	err = c.Retry.Do(ctx, func(ctx context.Context) error {
		res, attemptErr := c.initializeOnce(ctx, body)
		if attemptErr != nil {
			return attemptErr
		}
		result = res
		return nil
	})
	if err != nil {
		if !isTransient(err) {
			return nil, err
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, nil
}

func (c *Client) initializeOnce(ctx context.Context, body []byte) (*InitResult, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, ErrAuth
		case http.StatusBadRequest:
			var errResp struct {
				Message string `json:"message"`
			}
			if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr != nil || errResp.Message == "" {
				errResp.Message = "invalid payment request"
			}
			return nil, &RequestError{Message: errResp.Message}
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, b)
		}
	}

	var initResp struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, fmt.Errorf("invalid response from paystack: %w", err)
	}
	// A success body without the status flag or the checkout URL is a failed
	// attempt, not a silent success.
	if !initResp.Status {
		return nil, errors.New("paystack reported unsuccessful initialization")
	}
	if initResp.Data.AuthorizationURL == "" || initResp.Data.Reference == "" {
		return nil, errors.New("missing authorization URL from paystack")
	}
	return &InitResult{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		Reference:        initResp.Data.Reference,
	}, nil
}

// Verify fetches the authoritative status of a payment session. Single
// attempt: verification is user-driven and the caller can simply retry.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuth
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("paystack verify returned status %d: %s", resp.StatusCode, b)
	}

	var verifyResp struct {
		Status bool                   `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return nil, fmt.Errorf("invalid verify response from paystack: %w", err)
	}
	status, _ := verifyResp.Data["status"].(string)
	if status == "" {
		return nil, errors.New("missing transaction status in verify response")
	}
	return &VerifyResult{Status: status, Raw: verifyResp.Data}, nil
}

// MapStatus translates the gateway's status vocabulary into the transaction
// status enum: "success" completes, anything else fails.
func MapStatus(external string) string {
	if external == "success" {
		return models.StatusCompleted
	}
	return models.StatusFailed
}

func isTransient(err error) bool {
	if errors.Is(err, ErrAuth) {
		return false
	}
	var reqErr *RequestError
	return !errors.As(err, &reqErr)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
