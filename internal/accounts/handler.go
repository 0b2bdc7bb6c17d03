package accounts

import (
	"context"
	"io"
	"log/slog"

	"github.com/odyssey-erp/odyssey-pos/internal/dialog"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// User facing messages of the account screens.
const (
	MsgLogoutFailed        = "Logout failed"
	MsgLogoutNetworkFailed = "Logout failed due to network error."
	MsgGeneric             = "Something went wrong. Please try again."
	MsgUsersFailed         = "Failed to load users."
)

// Handler turns account failures into one dialog message each.
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

func (h *Handler) Login(ctx context.Context, creds Credentials) error {
	if err := h.service.Login(ctx, creds); err != nil {
		h.logger.Error("login", slog.String("username", creds.Username), slog.Any("error", err))
		msg := MsgGeneric
		if text, ok := apiclient.Message(err); ok {
			msg = "Error: " + text
		}
		return h.alert(ctx, msg, err)
	}
	h.logger.Info("logged in", slog.String("username", creds.Username))
	return nil
}

func (h *Handler) Logout(ctx context.Context) error {
	if err := h.service.Logout(ctx); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		if apiclient.IsNetwork(err) {
			return h.alert(ctx, MsgLogoutNetworkFailed, err)
		}
		return h.alert(ctx, MsgLogoutFailed, err)
	}
	return nil
}

func (h *Handler) Profile(ctx context.Context) (string, error) {
	text, err := h.service.Profile(ctx)
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		return "", h.alert(ctx, MsgGeneric, err)
	}
	return text, nil
}

func (h *Handler) Me(ctx context.Context) (Profile, error) {
	p, err := h.service.Me(ctx)
	if err != nil {
		h.logger.Error("load me", slog.Any("error", err))
		return Profile{}, h.alert(ctx, MsgGeneric, err)
	}
	return p, nil
}

// BranchUsers failures are logged only; the list keeps its last content.
func (h *Handler) BranchUsers(ctx context.Context, branchID int64, page int, query string) (UsersPage, error) {
	p, err := h.service.BranchUsers(ctx, branchID, page, query)
	if err != nil {
		h.logger.Error(MsgUsersFailed, slog.Int64("branch_id", branchID), slog.Any("error", err))
		return UsersPage{}, err
	}
	return p, nil
}

func (h *Handler) alert(ctx context.Context, msg string, cause error) error {
	if err := h.dialog.Alert(ctx, msg); err != nil {
		return err
	}
	return cause
}
