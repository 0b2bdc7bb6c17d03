package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/accounts"
	"github.com/odyssey-erp/odyssey-pos/internal/analytics"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/checkout"
	_ "github.com/odyssey-erp/odyssey-pos/internal/testing/guard"
	"github.com/odyssey-erp/odyssey-pos/internal/testing/posbackend"
)

type harness struct {
	srv *posbackend.Server
	cfg *app.Config
	dlg *dialog.Scripted
	nav *checkout.RecordingNavigator
}

func newHarness(t *testing.T, opts posbackend.Options) *harness {
	t.Helper()
	srv, ts := posbackend.Start(t, opts)
	return &harness{
		srv: srv,
		cfg: &app.Config{
			LogFormat:      "text",
			LogLevel:       "error",
			BaseURL:        ts.URL,
			RequestTimeout: 5 * time.Second,
			Store:          "file",
			StorePath:      t.TempDir(),
			TenderMode:     "exact",
			SearchDebounce: time.Millisecond,
			Locale:         "en",
		},
		dlg: dialog.NewScripted(),
		nav: &checkout.RecordingNavigator{},
	}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), args, Options{
		Stdout:    &out,
		Stderr:    &errOut,
		Stdin:     strings.NewReader(""),
		Config:    h.cfg,
		Dialog:    h.dlg,
		Navigator: h.nav,
	})
	return code, out.String(), errOut.String()
}

func (h *harness) seedTea(stock int) posbackend.Item {
	branch := h.srv.AddBranch("Main", "Jl. Merdeka 1")
	drinks := h.srv.AddCategory("Drinks", branch.ID)
	return h.srv.AddItem(posbackend.Item{Name: "Tea", Price: 10, Stock: stock, CategoryID: drinks.ID, BranchID: branch.ID})
}

func idArg(v int64) string { return strconv.FormatInt(v, 10) }

func TestGuardEnablesTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
}

func TestCartAddLooksUpItemAndPersists(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	tea := h.seedTea(5)

	code, out, stderr := h.run("cart", "add", idArg(tea.ID), "2")
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "Tea")
	require.Contains(t, out, "Total:    20.00")

	code, out, _ = h.run("cart", "show")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "x2")

	code, out, _ = h.run("cart", "qty", idArg(tea.ID), "-2")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Cart is empty.")
}

func TestCartAddWithoutLookup(t *testing.T) {
	h := newHarness(t, posbackend.Options{})

	code, out, stderr := h.run("cart", "add", "42", "--name", "Kopi", "--price", "12.5")
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "Kopi")
	require.Zero(t, h.srv.Calls("GET", "/inventory/items/partial/0/0/"))
}

func TestCartAddUnknownItem(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	h.seedTea(5)

	code, _, stderr := h.run("cart", "add", "999")
	require.Equal(t, ExitFailure, code)
	require.Contains(t, stderr, "item not found")
}

func TestCartRejectsBadArguments(t *testing.T) {
	h := newHarness(t, posbackend.Options{})

	code, _, stderr := h.run("cart", "rm", "abc")
	require.Equal(t, ExitFailure, code)
	require.Contains(t, stderr, `invalid item id "abc"`)

	code, _, _ = h.run("cart", "add", "1", "0", "--name", "Tea", "--price", "1")
	require.Equal(t, ExitBlocked, code)
}

func TestCheckoutCompletesSale(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	tea := h.seedTea(5)
	code, _, _ := h.run("cart", "add", idArg(tea.ID), "2")
	require.Equal(t, ExitOK, code)

	code, _, stderr := h.run("checkout", "--discount", "10")
	require.Equal(t, ExitOK, code, stderr)
	require.Equal(t, "Sale completed!\nFinal Total: 18.00", h.dlg.LastAlert())

	sales := h.srv.Sales()
	require.Len(t, sales, 1)
	require.Equal(t, fmt.Sprintf("/sales/detail/%d/", sales[0].ID), h.nav.Last())

	_, out, _ := h.run("cart", "show")
	require.Contains(t, out, "Cart is empty.")

	path := filepath.Join(t.TempDir(), "receipt.pdf")
	code, out, stderr = h.run("receipt", idArg(sales[0].ID), "-o", path)
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "application/pdf")
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestCheckoutBlockedExitCodes(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	tea := h.seedTea(5)

	code, _, _ := h.run("checkout")
	require.Equal(t, ExitBlocked, code)
	require.Equal(t, checkout.MsgEmptyCart, h.dlg.LastAlert())

	code, _, _ = h.run("cart", "add", idArg(tea.ID))
	require.Equal(t, ExitOK, code)

	code, _, _ = h.run("checkout", "--type", "dine_in")
	require.Equal(t, ExitBlocked, code)
	require.Equal(t, checkout.MsgMissingTable, h.dlg.LastAlert())

	code, _, _ = h.run("checkout", "--payment", "mixed", "--cash", "4", "--card", "5")
	require.Equal(t, ExitBlocked, code)
	require.Equal(t, "Cash + Card must equal final total (10.00)", h.dlg.LastAlert())
	require.Empty(t, h.srv.Sales())
}

func TestCheckoutBackendRejection(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	tea := h.seedTea(1)
	code, _, _ := h.run("cart", "add", idArg(tea.ID), "3")
	require.Equal(t, ExitOK, code)

	code, _, _ = h.run("checkout")
	require.Equal(t, ExitFailure, code)
	require.Equal(t, "Error: Insufficient stock for item: Tea", h.dlg.LastAlert())

	_, out, _ := h.run("cart", "show")
	require.Contains(t, out, "x3")
}

func TestBranchCommands(t *testing.T) {
	h := newHarness(t, posbackend.Options{})

	code, out, stderr := h.run("branches", "create", "--name", "Main", "--address", "Jl. Merdeka 1")
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "Created branch #")
	branch := h.srv.Branches()[0]

	code, _, _ = h.run("branches", "create")
	require.Equal(t, ExitBlocked, code)
	require.Equal(t, "Name required", h.dlg.LastAlert())

	h.dlg = dialog.NewScripted(dialog.Answer{Value: "Central"})
	code, _, _ = h.run("branches", "rename", idArg(branch.ID))
	require.Equal(t, ExitOK, code)
	require.Equal(t, []string{"Branch name"}, h.dlg.Asked())

	_, out, _ = h.run("branches", "list")
	require.Contains(t, out, "Central")

	h.dlg = dialog.NewScripted(dialog.Answer{Confirm: false})
	code, out, _ = h.run("branches", "delete", idArg(branch.ID))
	require.Equal(t, ExitOK, code)
	require.NotContains(t, out, "Deleted")
	require.Len(t, h.srv.Branches(), 1)

	h.dlg = dialog.NewScripted(dialog.Answer{Confirm: true})
	code, out, _ = h.run("branches", "delete", idArg(branch.ID))
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Deleted branch")
	require.Empty(t, h.srv.Branches())

	_, out, _ = h.run("branches", "list")
	require.Contains(t, out, "No branches yet.")
}

func TestCustomerCommands(t *testing.T) {
	h := newHarness(t, posbackend.Options{})

	code, out, stderr := h.run("customers", "create", "--name", "Budi", "--phone", "0812", "--type", "vip")
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "Name:  Budi")
	budi := h.srv.Customers()[0]

	code, out, _ = h.run("customers", "update", idArg(budi.ID), "--phone", "0899")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Name:  Budi")
	require.Contains(t, out, "Phone: 0899")

	code, out, _ = h.run("customers", "create", "--name", "Sari", "--address", "Jl. Mawar 2")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Address: Jl. Mawar 2")

	_, out, _ = h.run("customers", "search", "bud")
	require.Contains(t, out, "Budi")
	require.NotContains(t, out, "Sari")

	_, out, _ = h.run("customers", "list", "-q", "0899")
	require.Contains(t, out, "Budi")

	code, _, _ = h.run("customers", "create", "--name", "Eko", "--type", "gold")
	require.Equal(t, ExitBlocked, code)

	h.dlg = dialog.NewScripted(dialog.Answer{Confirm: true})
	code, out, _ = h.run("customers", "delete", idArg(budi.ID))
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Deleted customer")
	require.Len(t, h.srv.Customers(), 1)
}

func TestReportsTrendFormats(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	h.srv.SetTrend("daily", []string{"2025-01-01"}, []float64{12.5})

	code, out, stderr := h.run("reports", "trends")
	require.Equal(t, ExitOK, code, stderr)
	require.Equal(t, "Sales (daily)\n2025-01-01    12.50\n", out)

	_, out, _ = h.run("reports", "trends", "daily", "-f", "csv")
	require.Equal(t, "Date,Total\n2025-01-01,12.50\n", out)

	_, out, _ = h.run("reports", "trends", "-f", "svg")
	require.Contains(t, out, "<svg")

	_, out, _ = h.run("reports", "trends", "-f", "chart")
	require.Contains(t, out, "█")

	code, _, _ = h.run("reports", "trends", "-f", "xml")
	require.Equal(t, ExitFailure, code)
}

func TestReportsRangeValidation(t *testing.T) {
	h := newHarness(t, posbackend.Options{})

	code, out, _ := h.run("reports", "range", "2025-01-01", "01/31/2025")
	require.Equal(t, ExitBlocked, code)
	require.Empty(t, out)
	require.Equal(t, analytics.MsgSelectRange, h.dlg.LastAlert())
	require.Zero(t, h.srv.Calls("GET", "/reports/sales_trends_range/"))
}

func TestReportsFailureStillPrintsTitle(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	h.srv.Fail("GET", "/reports/top_items/", 500, "boom")

	code, out, _ := h.run("reports", "top")
	require.Equal(t, ExitFailure, code)
	require.Equal(t, analytics.TopItemsFailedTitle+"\n", out)
	require.Empty(t, h.dlg.Alerts())
}

func TestReportsExportAndLowStock(t *testing.T) {
	h := newHarness(t, posbackend.Options{})
	h.seedTea(2)

	_, out, _ := h.run("reports", "low-stock", "-f", "csv")
	require.Equal(t, "Item,Stock\nTea,2\n", out)

	path := filepath.Join(t.TempDir(), "sales.csv")
	code, _, stderr := h.run("reports", "export", "-o", path)
	require.Equal(t, ExitOK, code, stderr)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "ID,Date,Customer"))

	code, _, _ = h.run("reports", "export", "--start", "2025-01-01", "-o", path+".2")
	require.Equal(t, ExitBlocked, code)
	_, err = os.Stat(path + ".2")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSessionSharedAcrossCommands(t *testing.T) {
	h := newHarness(t, posbackend.Options{RequireLogin: true})
	branch := h.srv.AddBranch("Main", "")
	require.NoError(t, h.srv.AddUser(posbackend.User{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "manager",
		BranchID: branch.ID,
		AddedBy:  "root",
	}, "s3cret"))

	code, _, _ := h.run("me")
	require.Equal(t, ExitFailure, code)
	require.Equal(t, accounts.MsgGeneric, h.dlg.LastAlert())

	code, out, stderr := h.run("login", "-u", "alice", "-p", "s3cret")
	require.Equal(t, ExitOK, code, stderr)
	require.Contains(t, out, "Logged in as alice")

	code, out, _ = h.run("me")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Username: alice")
	require.Contains(t, out, "Added by: root")

	code, out, _ = h.run("users", "--branch", idArg(branch.ID))
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "alice")

	code, _, _ = h.run("users")
	require.Equal(t, ExitBlocked, code)

	code, out, _ = h.run("logout")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Logged out.")

	code, _, _ = h.run("me")
	require.Equal(t, ExitFailure, code)
}

func TestLoginPromptsForMissingPassword(t *testing.T) {
	h := newHarness(t, posbackend.Options{RequireLogin: true})
	require.NoError(t, h.srv.AddUser(posbackend.User{Username: "alice"}, "s3cret"))
	h.dlg = dialog.NewScripted(dialog.Answer{Value: "wrong"})

	code, _, _ := h.run("login", "-u", "alice")
	require.Equal(t, ExitFailure, code)
	require.Equal(t, []string{"Password"}, h.dlg.Asked())
	require.Equal(t, "Error: Invalid username or password", h.dlg.LastAlert())
}
