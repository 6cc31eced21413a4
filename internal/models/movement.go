package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is a financial transaction record owned by a client and tied to a product.
type Movement struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"clientId"`
	ProductID   string          `json:"productId"`
	Type        string          `json:"type,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
