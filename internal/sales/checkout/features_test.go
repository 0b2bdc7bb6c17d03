package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/localstore"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
)

type featureContext struct {
	t   *testing.T
	fx  *fixture
	err error
}

func (c *featureContext) reset() {
	c.fx = newFixture(c.t)
	c.err = nil
}

func (c *featureContext) anEmptyCart() error {
	return c.fx.cart.Clear(context.Background())
}

func (c *featureContext) aCartWith(table *godog.Table) error {
	if err := c.anEmptyCart(); err != nil {
		return err
	}
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		if err := c.fx.cart.Add(context.Background(), id, row.Cells[1].Value, price, qty); err != nil {
			return err
		}
	}
	return nil
}

func (c *featureContext) iAddItem(id int64, name string, price float64, qty int) error {
	return c.fx.cart.Add(context.Background(), id, name, price, qty)
}

func (c *featureContext) iChangeQuantity(id int64, delta int) error {
	return c.fx.cart.ChangeQuantity(context.Background(), id, delta)
}

func (c *featureContext) theCartHasLines(n int) error {
	if got := c.fx.cart.Len(); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *featureContext) itemHasQuantity(id int64, qty int) error {
	for _, line := range c.fx.cart.Lines() {
		if line.ID == id {
			if line.Quantity != qty {
				return fmt.Errorf("item %d: expected quantity %d, got %d", id, qty, line.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("item %d not in cart", id)
}

func (c *featureContext) theStoredCartIsAnEmptyList() error {
	raw, err := c.fx.kv.Get(context.Background(), cart.StorageKey)
	if err != nil {
		return err
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return err
	}
	if lines == nil || len(lines) != 0 {
		return fmt.Errorf("expected [], got %s", raw)
	}
	return nil
}

func (c *featureContext) theStoredCartIsRemoved() error {
	_, err := c.fx.kv.Get(context.Background(), cart.StorageKey)
	if !errors.Is(err, localstore.ErrNotFound) {
		return fmt.Errorf("expected no stored cart, got err=%v", err)
	}
	return nil
}

func (c *featureContext) aDiscountOf(raw string) error {
	c.fx.ctl.SetDiscount(raw)
	return nil
}

func (c *featureContext) theSubtotalIs(want string) error {
	if got := cart.FormatAmount(c.fx.ctl.Totals().Subtotal); got != want {
		return fmt.Errorf("subtotal: expected %s, got %s", want, got)
	}
	return nil
}

func (c *featureContext) theFinalTotalIs(want string) error {
	if got := c.fx.ctl.Totals().Display(); got != want {
		return fmt.Errorf("final total: expected %s, got %s", want, got)
	}
	return nil
}

func (c *featureContext) theBackendCompletesSale(id int64, final string) error {
	c.fx.backend.receipt = Receipt{SaleID: id, FinalTotal: json.Number(final)}
	return nil
}

func (c *featureContext) thePaymentIsMixed(cash, card string) error {
	c.fx.ctl.SetPaymentMethod(PaymentMixed)
	c.fx.ctl.SetTender(cash, card)
	return nil
}

func (c *featureContext) theOrderTypeIs(t string) error {
	c.fx.ctl.SetOrderType(context.Background(), OrderType(t))
	return nil
}

func (c *featureContext) customerWithoutAddressLookupFails(id int64) error {
	c.fx.backend.lookupErr = errors.New("address service unavailable")
	c.fx.ctl.SelectCustomer(context.Background(), &customers.Customer{ID: id, Name: "Customer"})
	return nil
}

func (c *featureContext) iCheckOut() error {
	_, c.err = c.fx.ctl.Submit(context.Background())
	return nil
}

func (c *featureContext) theBackendReceived(n int) error {
	if got := c.fx.backend.posted(); got != n {
		return fmt.Errorf("expected %d checkout posts, got %d", n, got)
	}
	return nil
}

func (c *featureContext) checkoutIsBlockedWithAlert(msg string) error {
	if !Blocked(c.err) {
		return fmt.Errorf("expected a blocked checkout, got %v", c.err)
	}
	if got := c.fx.dialog.LastAlert(); got != msg {
		return fmt.Errorf("expected alert %q, got %q", msg, got)
	}
	return nil
}

func (c *featureContext) theSaleCompletedAlertShows(final string) error {
	if c.err != nil {
		return fmt.Errorf("checkout failed: %w", c.err)
	}
	want := "Sale completed!\nFinal Total: " + final
	if got := c.fx.dialog.LastAlert(); got != want {
		return fmt.Errorf("expected alert %q, got %q", want, got)
	}
	return nil
}

func (c *featureContext) theRegisterNavigatedTo(path string) error {
	if got := c.fx.nav.Last(); got != path {
		return fmt.Errorf("expected navigation to %s, got %q", path, got)
	}
	return nil
}

func TestFeatures(t *testing.T) {
	fc := &featureContext{t: t}
	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
				fc.reset()
				return ctx, nil
			})

			ctx.Step(`^an empty cart$`, fc.anEmptyCart)
			ctx.Step(`^a cart with:$`, fc.aCartWith)
			ctx.Step(`^a discount of "([^"]*)" percent$`, fc.aDiscountOf)
			ctx.Step(`^the backend completes sale (\d+) with final total "([^"]*)"$`, fc.theBackendCompletesSale)
			ctx.Step(`^the payment is mixed with cash "([^"]*)" and card "([^"]*)"$`, fc.thePaymentIsMixed)
			ctx.Step(`^the order type is "([^"]*)"$`, fc.theOrderTypeIs)
			ctx.Step(`^customer (\d+) is selected without a stored address and the lookup fails$`, fc.customerWithoutAddressLookupFails)

			ctx.Step(`^I add item (\d+) "([^"]*)" at (\d+(?:\.\d+)?) with quantity (\d+)$`, fc.iAddItem)
			ctx.Step(`^I change the quantity of item (\d+) by (-?\d+)$`, fc.iChangeQuantity)
			ctx.Step(`^I check out$`, fc.iCheckOut)

			ctx.Step(`^the cart has (\d+) lines?$`, fc.theCartHasLines)
			ctx.Step(`^item (\d+) has quantity (\d+)$`, fc.itemHasQuantity)
			ctx.Step(`^the stored cart is an empty list$`, fc.theStoredCartIsAnEmptyList)
			ctx.Step(`^the stored cart is removed$`, fc.theStoredCartIsRemoved)
			ctx.Step(`^the subtotal is "([^"]*)"$`, fc.theSubtotalIs)
			ctx.Step(`^the final total is "([^"]*)"$`, fc.theFinalTotalIs)
			ctx.Step(`^the backend received (\d+) checkouts?$`, fc.theBackendReceived)
			ctx.Step(`^checkout is blocked with alert "([^"]*)"$`, fc.checkoutIsBlockedWithAlert)
			ctx.Step(`^the sale completed alert shows final total "([^"]*)"$`, fc.theSaleCompletedAlertShows)
			ctx.Step(`^the register navigated to "([^"]*)"$`, fc.theRegisterNavigatedTo)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
