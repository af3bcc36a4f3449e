package queries

import (
	"context"
	"time"

	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// DefaultLedgerTimeout bounds every ledger read made by the delivery queries.
const DefaultLedgerTimeout = 10 * time.Second

// ledgerReader is shared by the delivery query handlers.
type ledgerReader struct {
	ledger  ports.DeliveryLedger
	timeout time.Duration
}

func newLedgerReader(ledger ports.DeliveryLedger, timeout time.Duration) (ledgerReader, error) {
	if ledger == nil {
		return ledgerReader{}, errs.NewValueIsRequiredError("ledger")
	}
	if timeout <= 0 {
		timeout = DefaultLedgerTimeout
	}
	return ledgerReader{ledger: ledger, timeout: timeout}, nil
}

func (r ledgerReader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}
