package branches

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

const (
	MsgNameRequired  = "Name required"
	MsgConfirmDelete = "Delete branch?"
	MsgPromptName    = "Branch name"
	MsgDeleteFailed  = "Delete failed: "
	MsgCreateFailed  = "Create failed"
	MsgUpdateFailed  = "Update failed"
	MsgListFailed    = "Error loading branches."
	MsgEmpty         = "No branches yet."
)

// Handler drives the branches screen through a dialog service.
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

func (h *Handler) Load(ctx context.Context) ([]Branch, error) {
	list, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("load branches", slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

func (h *Handler) Create(ctx context.Context, form BranchForm) (Branch, error) {
	b, err := h.service.Create(ctx, form)
	switch {
	case errors.Is(err, shared.ErrRequiredField):
		return Branch{}, h.alert(ctx, MsgNameRequired, err)
	case err != nil:
		h.logger.Error("create branch", slog.Any("error", err))
		return Branch{}, h.alert(ctx, MsgCreateFailed, err)
	}
	return b, nil
}

// Rename prompts for a new name prefilled with the current one. A cancelled
// or empty answer changes nothing.
func (h *Handler) Rename(ctx context.Context, b Branch) (renamed bool, err error) {
	name, ok, err := h.dialog.Prompt(ctx, MsgPromptName, b.Name)
	if err != nil || !ok || name == "" {
		return false, err
	}
	if err := h.service.Rename(ctx, b.ID, name); err != nil {
		h.logger.Error("rename branch", slog.Int64("id", b.ID), slog.Any("error", err))
		return false, h.alert(ctx, MsgUpdateFailed, err)
	}
	return true, nil
}

func (h *Handler) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	ok, err := h.dialog.Confirm(ctx, MsgConfirmDelete)
	if err != nil || !ok {
		return false, err
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.Error("delete branch", slog.Int64("id", id), slog.Any("error", err))
		return false, h.alert(ctx, MsgDeleteFailed+apiclient.PayloadText(err), err)
	}
	return true, nil
}

func (h *Handler) alert(ctx context.Context, msg string, cause error) error {
	if err := h.dialog.Alert(ctx, msg); err != nil {
		return err
	}
	return cause
}
