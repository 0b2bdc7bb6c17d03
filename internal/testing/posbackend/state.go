package posbackend

import (
	"time"

	"github.com/shopspring/decimal"
)

type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

type Category struct {
	ID       int64
	Name     string
	BranchID int64
}

type Item struct {
	ID         int64
	Name       string
	Price      float64
	Stock      int
	CategoryID int64
	BranchID   int64
	Supplier   string
}

type User struct {
	Username string
	Email    string
	Role     string
	BranchID int64
	AddedBy  string
}

// CheckoutItem and CheckoutRequest decode the checkout body.
type CheckoutItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items"`
	Discount        float64        `json:"discount"`
	PaymentMethod   string         `json:"payment_method"`
	CustomerID      *int64         `json:"customer_id"`
	OrderType       string         `json:"order_type"`
	DeliveryAddress string         `json:"delivery_address"`
	TableNumber     string         `json:"table_number"`
	CashAmount      float64        `json:"cash_amount"`
	CardAmount      float64        `json:"card_amount"`
}

type SaleLine struct {
	ItemID   int64
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Sale is a completed checkout.
type Sale struct {
	ID             int64
	At             time.Time
	BranchID       int64
	Request        CheckoutRequest
	Lines          []SaleLine
	Total          decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
}

// Trend is the reply of the sales trend endpoints.
type Trend struct {
	Labels []string  `json:"labels"`
	Totals []float64 `json:"totals"`
}

type failure struct {
	status int
	body   string
}
