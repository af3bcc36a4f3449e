package kernel

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

const (
	// LocationFieldMinLength is the minimum length of every location field.
	LocationFieldMinLength = 1
	// LocationFieldMaxLength is the maximum length of every location field.
	LocationFieldMaxLength = 100
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
// Locations must be created using the NewLocation constructor to ensure validity.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location represents the last known whereabouts of a package at city granularity.
// Location is an immutable value object; every field holds between
// LocationFieldMinLength and LocationFieldMaxLength characters after trimming.
// The zero value of Location is invalid and will fail validation - use NewLocation to create instances.
//
// Example:
//
//	loc, err := kernel.NewLocation("Chicago", "IL", "USA")
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Chicago, IL, USA
type Location struct { //nolint:recvcheck //using for validation
	city    string
	state   string
	country string
	guard   guard.ConstructorGuard
}

// NewLocation creates a new Location from its city, state and country.
// Surrounding whitespace is trimmed; every field must remain non-empty and no
// longer than LocationFieldMaxLength characters. All field errors are reported together.
//
// Example:
//
//	loc, err := NewLocation("Chicago", "IL", "USA")
//	if err != nil {
//	    log.Fatal("Invalid location:", err)
//	}
func NewLocation(city, state, country string) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		loc.setCity(city),
		loc.setState(state),
		loc.setCountry(country),
	); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate checks if the Location was properly constructed using a constructor.
// The zero value of Location is invalid and will fail this validation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// City returns the city of the location.
func (l Location) City() string {
	return l.city
}

// State returns the state or region of the location.
func (l Location) State() string {
	return l.state
}

// Country returns the country of the location.
func (l Location) Country() string {
	return l.country
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Validate() != nil
}

// String returns a human-readable "city, state, country" representation.
// This method implements the fmt.Stringer interface.
func (l Location) String() string {
	return fmt.Sprintf("%s, %s, %s", l.city, l.state, l.country)
}

// IsEqual compares two locations for equality.
// Both locations must be properly constructed (pass validation) for the comparison to succeed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// setCity sets the city with validation.
// Note: We intentionally use a pointer receiver here while other methods use value receivers.
// Pointer receivers on private setters enable self-encapsulated validation during construction.
func (l *Location) setCity(city string) error {
	v, err := boundedText("city", city)
	if err != nil {
		return err
	}
	l.city = v
	return nil
}

func (l *Location) setState(state string) error {
	v, err := boundedText("state", state)
	if err != nil {
		return err
	}
	l.state = v
	return nil
}

func (l *Location) setCountry(country string) error {
	v, err := boundedText("country", country)
	if err != nil {
		return err
	}
	l.country = v
	return nil
}

func boundedText(name, value string) (string, error) {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	if n < LocationFieldMinLength {
		return "", errs.NewValueIsRequiredError(name)
	}
	if n > LocationFieldMaxLength {
		return "", errs.NewValueIsOutOfRangeError(name+" length", n, LocationFieldMinLength, LocationFieldMaxLength)
	}
	return v, nil
}
