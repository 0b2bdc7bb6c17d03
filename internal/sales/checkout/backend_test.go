package checkout_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/localstore"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/testing/posbackend"
)

type register struct {
	server  *posbackend.Server
	client  *apiclient.Client
	backend *checkout.HTTPBackend
	cart    *cart.Store
	kv      localstore.Store
	dialog  *dialog.Scripted
	nav     *checkout.RecordingNavigator
	ctl     *checkout.Controller
	tea     posbackend.Item
	bun     posbackend.Item
}

func newRegister(t *testing.T) *register {
	t.Helper()
	ctx := context.Background()
	srv, ts := posbackend.Start(t, posbackend.Options{})
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	require.NoError(t, client.EnsureCSRF(ctx))

	branch := srv.AddBranch("Main", "Jl. Merdeka 1")
	cat := srv.AddCategory("Drinks", branch.ID)
	r := &register{
		server:  srv,
		client:  client,
		backend: checkout.NewHTTPBackend(client),
		kv:      localstore.NewMemoryStore(),
		dialog:  dialog.NewScripted(),
		nav:     &checkout.RecordingNavigator{},
		tea:     srv.AddItem(posbackend.Item{Name: "Tea", Price: 10, Stock: 5, CategoryID: cat.ID, BranchID: branch.ID}),
		bun:     srv.AddItem(posbackend.Item{Name: "Bun", Price: 5, Stock: 5, CategoryID: cat.ID, BranchID: branch.ID}),
	}
	r.cart, err = cart.Open(ctx, r.kv)
	require.NoError(t, err)
	r.ctl = checkout.NewController(r.cart, r.backend, checkout.NewAddressResolver(r.backend, nil), r.dialog,
		checkout.WithNavigator(r.nav))
	return r
}

func (r *register) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.cart.Add(ctx, r.tea.ID, r.tea.Name, r.tea.Price, 2))
	require.NoError(t, r.cart.Add(ctx, r.bun.ID, r.bun.Name, r.bun.Price, 1))
}

func TestCheckoutAgainstBackend(t *testing.T) {
	ctx := context.Background()
	r := newRegister(t)
	r.fill(t)
	r.ctl.SetOrderType(ctx, checkout.OrderTakeaway)
	r.ctl.SetDiscount("10")
	r.ctl.SetPaymentMethod(checkout.PaymentMixed)
	r.ctl.SetTender("10", "12.50")

	receipt, err := r.ctl.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, "22.50", receipt.FinalTotal.String())
	require.Equal(t, "Sale completed!\nFinal Total: 22.50", r.dialog.LastAlert())
	require.Equal(t, receipt.DetailPath(), r.nav.Last())

	sales := r.server.Sales()
	require.Len(t, sales, 1)
	require.Equal(t, "mixed", sales[0].Request.PaymentMethod)
	require.Equal(t, "22.50", sales[0].FinalTotal.StringFixed(2))

	tea, _ := r.server.Item(r.tea.ID)
	require.Equal(t, 3, tea.Stock)
	require.Zero(t, r.cart.Len())

	var pdf bytes.Buffer
	contentType, err := r.backend.Receipt(ctx, receipt.SaleID, &pdf)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", contentType)
	require.Contains(t, pdf.String(), "%PDF")
}

func TestBlockedCheckoutNeverReachesBackend(t *testing.T) {
	ctx := context.Background()
	r := newRegister(t)
	r.fill(t)
	r.ctl.SetDiscount("10")
	r.ctl.SetPaymentMethod(checkout.PaymentMixed)
	r.ctl.SetTender("10", "12")

	_, err := r.ctl.Submit(ctx)
	require.True(t, checkout.Blocked(err))
	require.Equal(t, "Cash + Card must equal final total (22.50)", r.dialog.LastAlert())
	require.Zero(t, r.server.Calls(http.MethodPost, "/sales/checkout/"))
	require.Equal(t, 2, r.cart.Len())
}

func TestBackendRejectionIsShownOnce(t *testing.T) {
	ctx := context.Background()
	r := newRegister(t)
	require.NoError(t, r.cart.Add(ctx, r.tea.ID, r.tea.Name, r.tea.Price, 9))
	r.ctl.SetOrderType(ctx, checkout.OrderTakeaway)

	_, err := r.ctl.Submit(ctx)
	require.Error(t, err)
	require.False(t, checkout.Blocked(err))
	require.Equal(t, []string{"Error: Insufficient stock for item: Tea"}, r.dialog.Alerts())
	require.Equal(t, 1, r.cart.Len())
	require.Empty(t, r.nav.Last())
}

func TestDeliveryAddressComesFromBackend(t *testing.T) {
	ctx := context.Background()
	r := newRegister(t)
	r.fill(t)
	cust := r.server.AddCustomer(posbackend.Customer{Name: "Sari", Type: "vip", Address: "Jl. Kenanga 7"})

	r.ctl.SetOrderType(ctx, checkout.OrderDelivery)
	r.ctl.SelectCustomer(ctx, &customers.Customer{ID: cust.ID, Name: cust.Name})
	require.Equal(t, "Jl. Kenanga 7", r.ctl.Form().DeliveryAddress)

	_, err := r.ctl.Submit(ctx)
	require.NoError(t, err)
	sales := r.server.Sales()
	require.Len(t, sales, 1)
	require.Equal(t, "Jl. Kenanga 7", sales[0].Request.DeliveryAddress)
	require.NotNil(t, sales[0].Request.CustomerID)
	require.Equal(t, cust.ID, *sales[0].Request.CustomerID)
}
