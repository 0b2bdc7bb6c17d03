package checkout

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
)

// AddressLookup fetches a customer's stored delivery address.
type AddressLookup interface {
	CustomerAddress(ctx context.Context, customerID int64) (string, error)
}

// AddressResolver prefers the address carried on the selected customer and
// falls back to the backend. Concurrent lookups for one customer share a call.
type AddressResolver struct {
	lookup AddressLookup
	group  singleflight.Group
	logger *slog.Logger
}

func NewAddressResolver(lookup AddressLookup, logger *slog.Logger) *AddressResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AddressResolver{lookup: lookup, logger: logger}
}

// Resolve never fails: a lookup error is logged and yields "".
func (r *AddressResolver) Resolve(ctx context.Context, c *customers.Customer) string {
	if c == nil || c.ID == 0 {
		return ""
	}
	if c.Address != "" {
		return c.Address
	}
	v, err, _ := r.group.Do(strconv.FormatInt(c.ID, 10), func() (any, error) {
		return r.lookup.CustomerAddress(ctx, c.ID)
	})
	if err != nil {
		r.logger.Error("failed to fetch customer address",
			slog.Int64("customer_id", c.ID),
			slog.Any("error", err))
		return ""
	}
	return v.(string)
}
