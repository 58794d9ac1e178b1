package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/datastore4gh/datastore-gobackend/internal/models"
	"github.com/datastore4gh/datastore-gobackend/internal/paystack"
	"github.com/datastore4gh/datastore-gobackend/internal/pricing"
	"github.com/datastore4gh/datastore-gobackend/internal/store"
)

// Gateway is the payment gateway surface the workflow depends on.
type Gateway interface {
	Initialize(ctx context.Context, phone, bundle string, amount int64) (*paystack.InitResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// Store is the transaction persistence surface the workflow depends on.
type Store interface {
	Create(ctx context.Context, tx *models.Transaction) (string, error)
	FindByReference(ctx context.Context, reference string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, raw map[string]interface{}) error
	List(ctx context.Context, status string) ([]models.Transaction, error)
}

// ValidationError marks malformed client input. Never retried, always
// surfaced to the caller as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
var phoneStripper = strings.NewReplacer(" ", "", "\t", "", "-", "", "+", "")

// PaymentService orchestrates the payment workflow. It holds no per-request
// state; everything persistent lives in the store.
type PaymentService struct {
	gateway Gateway
	store   Store
}

func NewPaymentService(gateway Gateway, store Store) *PaymentService {
	return &PaymentService{gateway: gateway, store: store}
}

type InitiateResult struct {
	CheckoutURL string `json:"checkoutUrl"`
	Reference   string `json:"reference"`
}

// Initiate validates the input, resolves the bundle price, creates a payment
// session with the gateway, and records a pending transaction keyed by the
// gateway reference. The client-supplied input never carries an amount; the
// catalog is the only price source.
func (s *PaymentService) Initiate(ctx context.Context, phone, bundle string) (*InitiateResult, error) {
	phone = phoneStripper.Replace(strings.TrimSpace(phone))
	if phone == "" || bundle == "" {
		return nil, &ValidationError{Message: "phone number and bundle are required"}
	}
	if !phonePattern.MatchString(phone) {
		return nil, &ValidationError{Message: "invalid phone number format"}
	}
	amount, err := pricing.PriceOf(bundle)
	if err != nil {
		return nil, &ValidationError{Message: "invalid bundle selected"}
	}

	init, err := s.gateway.Initialize(ctx, phone, bundle, amount)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Phone:            phone,
		Bundle:           bundle,
		Amount:           amount,
		Status:           models.StatusPending,
		GatewayReference: init.Reference,
	}
	if _, err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}

	log.Printf("Payment initialized for %s - %s - reference=%s", phone, bundle, init.Reference)
	return &InitiateResult{CheckoutURL: init.AuthorizationURL, Reference: init.Reference}, nil
}

type TransactionSummary struct {
	Phone  string `json:"phone"`
	Bundle string `json:"bundle"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type VerifyResult struct {
	Success     bool               `json:"success"`
	Transaction TransactionSummary `json:"transaction"`
}

// Verify reconciles a transaction against the gateway's authoritative status.
// A pending transaction moves to exactly one terminal status; re-verifying a
// terminal transaction is a read, not a state change.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, &ValidationError{Message: "payment reference is required"}
	}

	verdict, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	final := tx.Status
	if !tx.Terminal() {
		final = paystack.MapStatus(verdict.Status)
		if err := s.store.UpdateStatus(ctx, tx.ID, final, verdict.Raw); err != nil {
			if !errors.Is(err, store.ErrStatusConflict) {
				return nil, err
			}
			// A concurrent verify finalized this transaction first with a
			// different verdict; the stored status wins.
			current, findErr := s.store.FindByReference(ctx, reference)
			if findErr != nil {
				return nil, findErr
			}
			final = current.Status
		}
	}

	reported := verdict.Status
	if paystack.MapStatus(verdict.Status) != final {
		log.Printf("Gateway reports %q for finalized transaction %s (stored %s), keeping stored status",
			verdict.Status, reference, final)
		reported = final
	}

	log.Printf("Payment %s for %s - %s", final, tx.Phone, tx.Bundle)
	return &VerifyResult{
		Success: final == models.StatusCompleted,
		Transaction: TransactionSummary{
			Phone:  tx.Phone,
			Bundle: tx.Bundle,
			Amount: tx.Amount,
			Status: reported,
		},
	}, nil
}

// List returns stored transactions, optionally filtered by status.
func (s *PaymentService) List(ctx context.Context, status string) ([]models.Transaction, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, &ValidationError{Message: "invalid status filter, must be pending, completed, or failed"}
	}
	return s.store.List(ctx, status)
}
