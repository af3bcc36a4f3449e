package delivery

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"custody/internal/pkg/errs"

	"github.com/google/uuid"
)

// IDLength is the length of every delivery id: DEL-YYYYMMDD-XXXXXXXX.
const IDLength = 21

var idPattern = regexp.MustCompile(`^DEL-\d{8}-[0-9A-Z]{8}$`)

// ID is the ledger key of a delivery.
type ID string

// NewID generates a delivery id for a delivery created at now.
func NewID(now time.Time) ID {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return ID(fmt.Sprintf("DEL-%s-%s", now.UTC().Format("20060102"), suffix))
}

// ParseID validates s as a delivery id.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks the DEL-YYYYMMDD-XXXXXXXX format.
func (id ID) Validate() error {
	if id == "" {
		return errs.NewValueIsRequiredError("deliveryId")
	}
	if len(id) != IDLength || !idPattern.MatchString(string(id)) {
		return errs.NewValueIsInvalidErrorWithCause("deliveryId",
			fmt.Errorf("%q must be in format DEL-YYYYMMDD-XXXXXXXX", string(id)))
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}
