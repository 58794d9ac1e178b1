package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses. A transaction starts as pending and moves to exactly
// one of the terminal statuses during verification.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Transaction struct {
	ID               primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Phone            string                 `bson:"phone" json:"phone"`
	Bundle           string                 `bson:"bundle" json:"bundle"`
	Amount           int64                  `bson:"amount" json:"amount"` // pesewas, copied from the catalog at creation
	Status           string                 `bson:"status" json:"status"`
	GatewayReference string                 `bson:"gateway_reference" json:"gateway_reference"`
	GatewayData      map[string]interface{} `bson:"gateway_data,omitempty" json:"-"`
	CreatedAt        time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time              `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the transaction has reached a final status.
func (t *Transaction) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// ValidStatus reports whether s is a known transaction status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}
