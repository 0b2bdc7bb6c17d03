package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/search"
)

// Messages shown at checkout.
const (
	MsgEmptyCart      = "Cart is empty!"
	MsgMissingAddress = "Please enter delivery address."
	MsgMissingTable   = "Please enter table number."
	msgTenderMismatch = "Cash + Card must equal final total (%s)"
	msgCompleted      = "Sale completed!\nFinal Total: %s"
	msgBackendError   = "Error: %s"
	msgFailed         = "Checkout failed: %v"
)

// Validation failures that stop a checkout before any request is sent.
var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrMissingAddress = errors.New("checkout: delivery address required")
	ErrMissingTable   = errors.New("checkout: table number required")
	ErrTenderMismatch = errors.New("checkout: cash and card do not match final total")
	ErrInvalidPayload = errors.New("checkout: invalid payload")
)

// Blocked reports whether err stopped the checkout locally.
func Blocked(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingAddress) ||
		errors.Is(err, ErrMissingTable) ||
		errors.Is(err, ErrTenderMismatch) ||
		errors.Is(err, ErrInvalidPayload)
}

// Backend performs the checkout call.
type Backend interface {
	Checkout(ctx context.Context, p Payload) (Receipt, error)
}

// Recorder counts checkout outcomes.
type Recorder interface {
	Checkout(outcome string)
}

// Option customises a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTenderPolicy(p TenderPolicy) Option {
	return func(c *Controller) {
		if p != nil {
			c.tender = p
		}
	}
}

// WithRecorder adds r to the recorders told about every outcome.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorders = append(c.recorders, r)
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// Form is a snapshot of the order form.
type Form struct {
	OrderType       OrderType
	Customer        *customers.Customer
	DeliveryAddress string
	TableNumber     string
	Discount        float64
	PaymentMethod   string
	Cash            float64
	Card            float64
}

// Controller holds the order form next to the cart and runs checkout.
type Controller struct {
	cart      *cart.Store
	backend   Backend
	addresses *AddressResolver
	dialog    dialog.Service
	navigator Navigator
	tender    TenderPolicy
	recorders []Recorder
	logger    *slog.Logger
	validate  *validator.Validate

	lookups search.Generations

	mu   sync.Mutex
	form Form
}

// NewController starts with a takeaway cash order and no customer.
func NewController(c *cart.Store, backend Backend, addresses *AddressResolver, dlg dialog.Service, opts ...Option) *Controller {
	ctl := &Controller{
		cart:      c,
		backend:   backend,
		addresses: addresses,
		dialog:    dlg,
		tender:    ExactTender{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate:  validator.New(),
		form:      Form{OrderType: OrderTakeaway, PaymentMethod: PaymentCash},
	}
	for _, opt := range opts {
		opt(ctl)
	}
	return ctl
}

// Form returns a copy of the current order form.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	if f.Customer != nil {
		cust := *f.Customer
		f.Customer = &cust
	}
	return f
}

// Visibility reports which optional inputs apply to the current form.
func (c *Controller) Visibility() Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Visibility()
}

// Visibility reports which optional inputs apply to f.
func (f Form) Visibility() Visibility {
	return Visibility{
		DeliveryAddress: f.OrderType == OrderDelivery,
		Customer:        f.OrderType == OrderDelivery,
		TableNumber:     f.OrderType == OrderDineIn,
		MixedTender:     f.PaymentMethod == PaymentMixed,
	}
}

// SetOrderType applies the order type transition. Leaving delivery clears
// the address and the customer; entering it resolves the address again.
func (c *Controller) SetOrderType(ctx context.Context, t OrderType) {
	if t == "" {
		t = OrderTakeaway
	}
	c.mu.Lock()
	c.form.OrderType = t
	if t != OrderDelivery {
		c.form.DeliveryAddress = ""
		c.form.Customer = nil
	}
	c.mu.Unlock()
	c.refreshAddress(ctx)
}

// SelectCustomer sets or, with nil, clears the customer. On a delivery
// order the address follows the customer.
func (c *Controller) SelectCustomer(ctx context.Context, cust *customers.Customer) {
	c.mu.Lock()
	if cust != nil {
		cp := *cust
		cust = &cp
	}
	c.form.Customer = cust
	c.mu.Unlock()
	c.refreshAddress(ctx)
}

// SetDeliveryAddress records a typed address.
func (c *Controller) SetDeliveryAddress(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.DeliveryAddress = address
}

func (c *Controller) SetTableNumber(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.TableNumber = table
}

// SetDiscount takes the discount box text; it is a percentage and is not
// range checked.
func (c *Controller) SetDiscount(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Discount = ParseAmount(raw)
}

func (c *Controller) SetPaymentMethod(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.PaymentMethod = method
}

// SetTender takes the cash and card box texts of a mixed payment.
func (c *Controller) SetTender(cash, card string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Cash = ParseAmount(cash)
	c.form.Card = ParseAmount(card)
}

// Totals computes the cart totals under the current discount.
func (c *Controller) Totals() cart.Totals {
	c.mu.Lock()
	discount := c.form.Discount
	c.mu.Unlock()
	return cart.Compute(c.cart.Lines(), discount)
}

// refreshAddress resolves the delivery address for the current customer.
// A lookup that finishes after the customer or order type changed again is
// discarded.
func (c *Controller) refreshAddress(ctx context.Context) {
	tok := c.lookups.Next()
	c.mu.Lock()
	f := c.form
	if f.OrderType != OrderDelivery || f.Customer == nil {
		c.form.DeliveryAddress = ""
		c.mu.Unlock()
		return
	}
	cust := *f.Customer
	c.mu.Unlock()

	address := ""
	if c.addresses != nil {
		address = c.addresses.Resolve(ctx, &cust)
	} else {
		address = cust.Address
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lookups.Current(tok) {
		return
	}
	c.form.DeliveryAddress = address
}

// Submit validates the order and posts it. Every outcome is reported to the
// user through the dialog exactly once; the returned error lets callers tell
// a local block (see Blocked) from a backend or network failure.
func (c *Controller) Submit(ctx context.Context) (Receipt, error) {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return Receipt{}, c.block(ctx, MsgEmptyCart, ErrEmptyCart)
	}
	f := c.Form()

	payload := Payload{
		Items:         c.cart.Items(),
		Discount:      f.Discount,
		PaymentMethod: f.PaymentMethod,
		OrderType:     f.OrderType,
	}
	if f.Customer != nil && f.Customer.ID != 0 {
		id := f.Customer.ID
		payload.CustomerID = &id
	}
	switch f.OrderType {
	case OrderDelivery:
		payload.DeliveryAddress = f.DeliveryAddress
		if strings.TrimSpace(f.DeliveryAddress) == "" {
			return Receipt{}, c.block(ctx, MsgMissingAddress, ErrMissingAddress)
		}
	case OrderDineIn:
		payload.TableNumber = f.TableNumber
		if strings.TrimSpace(f.TableNumber) == "" {
			return Receipt{}, c.block(ctx, MsgMissingTable, ErrMissingTable)
		}
	}
	if f.PaymentMethod == PaymentMixed {
		payload.CashAmount = f.Cash
		payload.CardAmount = f.Card
		totals := cart.Compute(lines, f.Discount)
		if !c.tender.Balanced(f.Cash, f.Card, totals.Final) {
			msg := fmt.Sprintf(msgTenderMismatch, totals.Display())
			return Receipt{}, c.block(ctx, msg, ErrTenderMismatch)
		}
	}
	if err := c.validate.Struct(payload); err != nil {
		c.logger.Error("checkout payload rejected", slog.Any("error", err))
		return Receipt{}, c.block(ctx, fmt.Sprintf(msgFailed, err), fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	receipt, err := c.backend.Checkout(ctx, payload)
	if err != nil {
		c.logger.Error("checkout failed", slog.Any("error", err))
		msg := fmt.Sprintf(msgFailed, err)
		outcome := "failed"
		if text, ok := apiclient.Message(err); ok {
			msg = fmt.Sprintf(msgBackendError, text)
			outcome = "rejected"
		}
		c.record(outcome)
		if alertErr := c.dialog.Alert(ctx, msg); alertErr != nil {
			return Receipt{}, errors.Join(err, alertErr)
		}
		return Receipt{}, err
	}

	if err := c.cart.Clear(ctx); err != nil {
		c.logger.Error("clear cart after sale", slog.Int64("sale_id", receipt.SaleID), slog.Any("error", err))
	}
	c.resetForm()
	c.record("completed")
	c.logger.Info("sale completed",
		slog.Int64("sale_id", receipt.SaleID),
		slog.String("final_total", receipt.FinalTotal.String()))
	if err := c.dialog.Alert(ctx, fmt.Sprintf(msgCompleted, receipt.FinalTotal.String())); err != nil {
		return receipt, err
	}
	if c.navigator == nil {
		return receipt, nil
	}
	if err := c.navigator.Navigate(ctx, receipt.DetailPath()); err != nil {
		return receipt, fmt.Errorf("navigate to sale %d: %w", receipt.SaleID, err)
	}
	return receipt, nil
}

func (c *Controller) block(ctx context.Context, msg string, cause error) error {
	c.record("blocked")
	c.logger.Warn("checkout blocked", slog.String("reason", msg))
	if err := c.dialog.Alert(ctx, msg); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (c *Controller) resetForm() {
	c.lookups.Next()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = Form{OrderType: OrderTakeaway, PaymentMethod: PaymentCash}
}

func (c *Controller) record(outcome string) {
	for _, r := range c.recorders {
		r.Checkout(outcome)
	}
}
