package delivery

import (
	"strings"
	"time"
	"unicode/utf8"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// MaxDisputeReasonLength bounds free-text dispute reasons.
const MaxDisputeReasonLength = 1000

// DisputeReason explains why a handoff target refused the package. Any text up to
// MaxDisputeReasonLength characters is accepted; the catalogued codes below are the
// ones clients offer by default.
type DisputeReason string

const (
	ReasonPackageDamaged     DisputeReason = "PACKAGE_DAMAGED"
	ReasonPackageMissing     DisputeReason = "PACKAGE_MISSING"
	ReasonWrongPackage       DisputeReason = "WRONG_PACKAGE"
	ReasonPackageOpened      DisputeReason = "PACKAGE_OPENED"
	ReasonIncompleteDelivery DisputeReason = "INCOMPLETE_DELIVERY"
	ReasonOther              DisputeReason = "OTHER"
)

// NewDisputeReason trims and validates a dispute reason.
func NewDisputeReason(s string) (DisputeReason, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errs.NewValueIsRequiredError("reason")
	}
	if n := utf8.RuneCountInString(v); n > MaxDisputeReasonLength {
		return "", errs.NewValueIsOutOfRangeError("reason length", n, 1, MaxDisputeReasonLength)
	}
	return DisputeReason(v), nil
}

// IsCatalogued reports whether r is one of the predefined reason codes.
func (r DisputeReason) IsCatalogued() bool {
	switch r {
	case ReasonPackageDamaged, ReasonPackageMissing, ReasonWrongPackage,
		ReasonPackageOpened, ReasonIncompleteDelivery, ReasonOther:
		return true
	default:
		return false
	}
}

func (r DisputeReason) String() string { return string(r) }

// Dispute records the most recent refused handoff of a delivery.
type Dispute struct {
	By         kernel.Party
	Reason     DisputeReason
	FromStatus Status
	At         time.Time
}
