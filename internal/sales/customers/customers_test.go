package customers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/testing/posbackend"
)

func setup(t *testing.T, answers ...dialog.Answer) (*posbackend.Server, *customers.Handler, *dialog.Scripted) {
	t.Helper()
	srv, ts := posbackend.Start(t, posbackend.Options{})
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	require.NoError(t, client.EnsureCSRF(context.Background()))
	dlg := dialog.NewScripted(answers...)
	h := customers.NewHandler(customers.NewService(customers.NewHTTPRepository(client)), dlg, nil)
	return srv, h, dlg
}

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	srv, h, dlg := setup(t, dialog.Answer{Confirm: true})

	created, err := h.Save(ctx, 0, customers.CustomerForm{Name: "  Budi ", Phone: "0812"})
	require.NoError(t, err)
	require.Equal(t, "Budi", created.Name)
	require.Equal(t, customers.TypeRegular, created.Type)

	updated, err := h.Save(ctx, created.ID, customers.CustomerForm{Name: "Budi S", Type: customers.TypeVIP})
	require.NoError(t, err)
	require.Equal(t, "vip", updated.Type)

	got, err := h.Edit(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Budi S", got.Name)
	require.Equal(t, "Budi S (vip)", got.Label())

	list, err := h.Load(ctx, "budi")
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := h.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.Empty(t, srv.Customers())
	require.Equal(t, []string{customers.MsgConfirmDelete}, dlg.Asked())
	require.Empty(t, dlg.Alerts())
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	srv, h, _ := setup(t, dialog.Answer{Confirm: false})
	c := srv.AddCustomer(posbackend.Customer{Name: "Ani"})

	deleted, err := h.Delete(context.Background(), c.ID)
	require.NoError(t, err)
	require.False(t, deleted)
	require.Zero(t, srv.Calls(http.MethodDelete, "/api/customers/1/"))
	require.Len(t, srv.Customers(), 1)
}

func TestEditMissingCustomer(t *testing.T) {
	_, h, dlg := setup(t)

	_, err := h.Edit(context.Background(), 99)
	require.ErrorIs(t, err, customers.ErrNotFound)
	require.Equal(t, []string{customers.MsgLoadFailed}, dlg.Alerts())
}

func TestSaveRejectsInvalidForm(t *testing.T) {
	srv, h, dlg := setup(t)

	_, err := h.Save(context.Background(), 0, customers.CustomerForm{Name: "X", Type: "gold"})
	require.Error(t, err)
	require.Equal(t, []string{customers.MsgSaveFailed}, dlg.Alerts())
	require.Zero(t, srv.Calls(http.MethodPost, "/api/customers/"))
}

func TestInvalidIDNeverReachesBackend(t *testing.T) {
	_, h, _ := setup(t, dialog.Answer{Confirm: true})

	_, err := h.Delete(context.Background(), 0)
	require.ErrorIs(t, err, customers.ErrInvalidID)
}

func TestQuickCreateKeepsTypedAddress(t *testing.T) {
	srv, h, dlg := setup(t)

	c, err := h.QuickCreate(context.Background(), customers.QuickCreateForm{Name: "Rina", Address: " Jl. Melati 3 "})
	require.NoError(t, err)
	require.Equal(t, "Jl. Melati 3", c.Address)
	require.Equal(t, "regular", c.Type)
	require.Len(t, srv.Customers(), 1)
	require.Empty(t, dlg.Alerts())
}

func TestQuickCreateBackendError(t *testing.T) {
	srv, h, dlg := setup(t)
	srv.Fail(http.MethodPost, "/customers/new/", http.StatusOK, `{"error":"Phone already used"}`)

	_, err := h.QuickCreate(context.Background(), customers.QuickCreateForm{Name: "Rina"})
	require.ErrorIs(t, err, apiclient.ErrApplication)
	require.Equal(t, []string{"Error: Phone already used"}, dlg.Alerts())
}

func TestQuickCreateTransportError(t *testing.T) {
	srv, h, dlg := setup(t)
	srv.Fail(http.MethodPost, "/customers/new/", http.StatusInternalServerError, "<h1>Server Error</h1>")

	_, err := h.QuickCreate(context.Background(), customers.QuickCreateForm{Name: "Rina"})
	require.ErrorIs(t, err, apiclient.ErrStatus)
	require.Equal(t, []string{customers.MsgQuickFailed + "quick create customer: HTTP Error 500"}, dlg.Alerts())
}

func TestSearch(t *testing.T) {
	srv, ts := posbackend.Start(t, posbackend.Options{})
	srv.AddCustomer(posbackend.Customer{Name: "Sari"})
	srv.AddCustomer(posbackend.Customer{Name: "Joko"})
	client, err := apiclient.New(apiclient.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	svc := customers.NewService(customers.NewHTTPRepository(client))

	found, err := svc.Search(context.Background(), "  sa ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Sari", found[0].Name)
}

func TestSearchUnreachableBackend(t *testing.T) {
	client, err := apiclient.New(apiclient.Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = customers.NewService(customers.NewHTTPRepository(client)).Search(context.Background(), "sa")
	require.True(t, apiclient.IsNetwork(err))
}

func TestLoadFailureIsNotAlerted(t *testing.T) {
	srv, h, dlg := setup(t)
	srv.Fail(http.MethodGet, "/api/customers/", http.StatusInternalServerError, "oops")

	_, err := h.Load(context.Background(), "")
	require.True(t, errors.Is(err, apiclient.ErrStatus))
	require.Empty(t, dlg.Alerts())
}
