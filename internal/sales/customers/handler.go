package customers

import (
	"context"
	"io"
	"log/slog"

	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// User facing messages of the customers screen.
const (
	MsgConfirmDelete = "Delete customer?"
	MsgDeleteFailed  = "Delete failed"
	MsgLoadFailed    = "Failed to load"
	MsgSaveFailed    = "Save failed"
	MsgListFailed    = "Error loading customers"
	MsgQuickFailed   = "Failed to add customer: "
)

// Handler drives the customer screen: it asks for confirmation, and turns
// failures into exactly one dialog message.
type Handler struct {
	service *Service
	dialog  dialog.Service
	logger  *slog.Logger
}

func NewHandler(service *Service, dlg dialog.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{service: service, dialog: dlg, logger: logger}
}

// Load lists customers. Errors are logged and returned; the screen shows
// MsgListFailed in place of the table rather than a dialog.
func (h *Handler) Load(ctx context.Context, query string) ([]Customer, error) {
	list, err := h.service.List(ctx, query)
	if err != nil {
		h.logger.Error("load customers", slog.String("q", query), slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

// Edit fetches the customer to prefill the edit form.
func (h *Handler) Edit(ctx context.Context, id int64) (Customer, error) {
	c, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.Error("load customer", slog.Int64("id", id), slog.Any("error", err))
		return Customer{}, h.alert(ctx, MsgLoadFailed, err)
	}
	return c, nil
}

// Save creates when id is zero and updates otherwise.
func (h *Handler) Save(ctx context.Context, id int64, form CustomerForm) (Customer, error) {
	var (
		c   Customer
		err error
	)
	if id == 0 {
		c, err = h.service.Create(ctx, form)
	} else {
		c, err = h.service.Update(ctx, id, form)
	}
	if err != nil {
		h.logger.Error("save customer", slog.Int64("id", id), slog.Any("error", err))
		return Customer{}, h.alert(ctx, MsgSaveFailed, err)
	}
	return c, nil
}

// Delete asks for confirmation first. deleted is false when the user declined.
func (h *Handler) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	ok, err := h.dialog.Confirm(ctx, MsgConfirmDelete)
	if err != nil || !ok {
		return false, err
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.Error("delete customer", slog.Int64("id", id), slog.Any("error", err))
		return false, h.alert(ctx, MsgDeleteFailed, err)
	}
	return true, nil
}

// QuickCreate backs the POS "add customer" modal.
func (h *Handler) QuickCreate(ctx context.Context, form QuickCreateForm) (Customer, error) {
	c, err := h.service.QuickCreate(ctx, form)
	if err != nil {
		h.logger.Error("quick create customer", slog.Any("error", err))
		msg := MsgQuickFailed + err.Error()
		if text, ok := apiclient.Message(err); ok {
			msg = "Error: " + text
		}
		return Customer{}, h.alert(ctx, msg, err)
	}
	return c, nil
}

func (h *Handler) alert(ctx context.Context, msg string, cause error) error {
	if err := h.dialog.Alert(ctx, msg); err != nil {
		return err
	}
	return cause
}
