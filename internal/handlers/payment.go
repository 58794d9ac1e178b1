package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/datastore4gh/datastore-gobackend/internal/paystack"
	"github.com/datastore4gh/datastore-gobackend/internal/pricing"
	"github.com/datastore4gh/datastore-gobackend/internal/services"
	"github.com/datastore4gh/datastore-gobackend/internal/store"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePayment handles POST /api/create-payment.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone  string `json:"phone"`
		Bundle string `json:"bundle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Initiate(r.Context(), req.Phone, req.Bundle)
	if err != nil {
		var valErr *services.ValidationError
		var reqErr *paystack.RequestError
		switch {
		case errors.As(err, &valErr):
			writeError(w, http.StatusBadRequest, valErr.Message)
		case errors.As(err, &reqErr):
			writeError(w, http.StatusBadRequest, reqErr.Message)
		case errors.Is(err, paystack.ErrAuth):
			log.Printf("Payment initialization failed: %v", err)
			writeError(w, http.StatusInternalServerError, "payment service authentication failed")
		case errors.Is(err, paystack.ErrTimeout):
			log.Printf("Payment initialization failed: %v", err)
			writeError(w, http.StatusServiceUnavailable, "payment service timeout, please try again")
		case errors.Is(err, paystack.ErrUnavailable):
			log.Printf("Payment initialization failed: %v", err)
			writeError(w, http.StatusServiceUnavailable, "payment service temporarily unavailable, please try again")
		default:
			log.Printf("Payment initialization failed: %v", err)
			writeError(w, http.StatusInternalServerError, "payment initialization failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// VerifyPayment handles GET /api/verify-payment?reference=.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")

	result, err := h.service.Verify(r.Context(), reference)
	if err != nil {
		var valErr *services.ValidationError
		switch {
		case errors.As(err, &valErr):
			writeError(w, http.StatusBadRequest, valErr.Message)
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		default:
			log.Printf("Payment verification failed for %s: %v", reference, err)
			writeError(w, http.StatusInternalServerError, "payment verification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetBundles handles GET /api/bundles.
func (h *PaymentHandler) GetBundles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pricing.Providers())
}

// GetPayments handles GET /api/payments?status=.
func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	txs, err := h.service.List(r.Context(), status)
	if err != nil {
		var valErr *services.ValidationError
		if errors.As(err, &valErr) {
			writeError(w, http.StatusBadRequest, valErr.Message)
			return
		}
		log.Printf("Failed to fetch transactions: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
