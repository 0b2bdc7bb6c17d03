// Package checkout owns the POS order form: order type and payment
// transitions, tender validation and the checkout call itself.
package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
)

// OrderType selects which extra fields an order needs.
type OrderType string

const (
	OrderDelivery OrderType = "delivery"
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
)

// Payment methods the register offers. Any other value is passed through.
const (
	PaymentCash  = "cash"
	PaymentCard  = "card"
	PaymentMixed = "mixed"
)

// Visibility mirrors which optional inputs the order form shows.
type Visibility struct {
	DeliveryAddress bool
	TableNumber     bool
	Customer        bool
	MixedTender     bool
}

// Payload is the body posted to /sales/checkout/. Amounts are sent unrounded.
type Payload struct {
	Items           []cart.Item `json:"items" validate:"required,min=1,dive"`
	Discount        float64     `json:"discount"`
	PaymentMethod   string      `json:"payment_method"`
	CustomerID      *int64      `json:"customer_id"`
	OrderType       OrderType   `json:"order_type"`
	DeliveryAddress string      `json:"delivery_address"`
	TableNumber     string      `json:"table_number"`
	CashAmount      float64     `json:"cash_amount"`
	CardAmount      float64     `json:"card_amount"`
}

// Receipt is the success reply. final_total arrives as a decimal string
// from the backend but numbers are accepted too.
type Receipt struct {
	SaleID         int64       `json:"sale_id"`
	FinalTotal     json.Number `json:"final_total"`
	Total          json.Number `json:"total,omitempty"`
	DiscountAmount json.Number `json:"discount_amount,omitempty"`
	RedirectURL    string      `json:"redirect_url,omitempty"`
}

// DetailPath is where the register goes after a completed sale.
func (r Receipt) DetailPath() string {
	return fmt.Sprintf("/sales/detail/%d/", r.SaleID)
}
