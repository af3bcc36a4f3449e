package kernel

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// MaxUserIDLength bounds user identifiers accepted by the ledger.
const MaxUserIDLength = 100

// Role is the part a user plays in the custody chain. The string values are the
// ones persisted on the ledger.
type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleSeller      Role = "SELLER"
	RoleTransporter Role = "DELIVERY_PERSON"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole converts a ledger or header value into a Role.
// Unknown values are rejected rather than passed through.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleSeller, RoleTransporter, RoleAdmin:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string { return string(r) }

// ErrPartyIsNotConstructed is returned when a zero Party is used where an identified user is required.
var ErrPartyIsNotConstructed = errs.NewValueIsRequiredError("party must be created via NewParty constructor")

// Party identifies a user together with the role they act in. Custodians,
// handoff initiators and targets, and request actors are all parties.
// The zero value means "nobody", e.g. a delivery that has not been picked up yet.
type Party struct { //nolint:recvcheck //using for validation
	userID string
	role   Role
	guard  guard.ConstructorGuard
}

// NewParty validates and creates a Party.
func NewParty(userID string, role Role) (Party, error) {
	p := Party{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setUserID(userID), p.setRole(role)); err != nil {
		return Party{}, err
	}

	return p, nil
}

// Validate checks that the party was built by NewParty.
func (p Party) Validate() error {
	return p.guard.Validate(ErrPartyIsNotConstructed)
}

// UserID returns the party's user identifier.
func (p Party) UserID() string { return p.userID }

// Role returns the role the party acts in.
func (p Party) Role() Role { return p.role }

// IsZero reports whether the party is unset.
func (p Party) IsZero() bool { return p.userID == "" }

// Is reports whether the party refers to the given user, regardless of role.
func (p Party) Is(userID string) bool {
	return !p.IsZero() && p.userID == userID
}

// IsEqual compares user id and role.
func (p Party) IsEqual(other Party) bool {
	return p.userID == other.userID && p.role == other.role
}

func (p Party) String() string {
	if p.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s(%s)", p.userID, p.role)
}

func (p *Party) setUserID(userID string) error {
	if userID == "" {
		return errs.NewValueIsRequiredError("userId")
	}
	if n := utf8.RuneCountInString(userID); n > MaxUserIDLength {
		return errs.NewValueIsOutOfRangeError("userId length", n, 1, MaxUserIDLength)
	}
	p.userID = userID
	return nil
}

func (p *Party) setRole(role Role) error {
	parsed, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	p.role = parsed
	return nil
}
