package delivery

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// PendingHandoff is an outstanding offer to transfer custody from initiator to target.
// A delivery carries at most one at a time.
type PendingHandoff struct {
	initiator   kernel.Party
	target      kernel.Party
	initiatedAt time.Time
}

// NewPendingHandoff validates both parties and builds an offer.
func NewPendingHandoff(initiator, target kernel.Party, initiatedAt time.Time) (*PendingHandoff, error) {
	if err := errors.Join(initiator.Validate(), target.Validate()); err != nil {
		return nil, err
	}
	if initiatedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("initiatedAt")
	}
	return &PendingHandoff{
		initiator:   initiator,
		target:      target,
		initiatedAt: initiatedAt.UTC(),
	}, nil
}

// Initiator returns the party that made the offer.
func (h *PendingHandoff) Initiator() kernel.Party { return h.initiator }

// Target returns the party the package is offered to.
func (h *PendingHandoff) Target() kernel.Party { return h.target }

// InitiatedAt returns when the offer was made.
func (h *PendingHandoff) InitiatedAt() time.Time { return h.initiatedAt }

// IsFinalLeg reports whether the offer goes to the customer.
func (h *PendingHandoff) IsFinalLeg() bool { return h.target.Role() == kernel.RoleCustomer }
