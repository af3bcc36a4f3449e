package kernel

import (
	"errors"
	"fmt"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

const (
	// MaxPackageWeight is the heaviest accepted package, in kilograms.
	MaxPackageWeight = 10000.0
	// MaxPackageDimension is the largest accepted edge length, in centimeters.
	MaxPackageDimension = 1000.0
)

// ErrPackageAttributesIsNotConstructed is returned when a zero PackageAttributes value is used.
var ErrPackageAttributesIsNotConstructed = errs.NewValueIsRequiredError(
	"package attributes must be created via NewPackageAttributes constructor")

// PackageAttributes captures the physical measurements of a package as asserted by
// the party taking custody of it: weight in kilograms and length, width and height
// in centimeters. Weight lies in (0, MaxPackageWeight] and every dimension in
// (0, MaxPackageDimension].
type PackageAttributes struct { //nolint:recvcheck //using for validation
	weight float64
	length float64
	width  float64
	height float64
	guard  guard.ConstructorGuard
}

// NewPackageAttributes validates and creates package measurements.
// All out-of-range values are reported together.
func NewPackageAttributes(weight, length, width, height float64) (PackageAttributes, error) {
	p := PackageAttributes{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		p.setWeight(weight),
		p.setDimension("length", &p.length, length),
		p.setDimension("width", &p.width, width),
		p.setDimension("height", &p.height, height),
	); err != nil {
		return PackageAttributes{}, err
	}

	return p, nil
}

// Validate checks that the attributes were built by NewPackageAttributes.
func (p PackageAttributes) Validate() error {
	return p.guard.Validate(ErrPackageAttributesIsNotConstructed)
}

// Weight returns the package weight in kilograms.
func (p PackageAttributes) Weight() float64 { return p.weight }

// Length returns the package length in centimeters.
func (p PackageAttributes) Length() float64 { return p.length }

// Width returns the package width in centimeters.
func (p PackageAttributes) Width() float64 { return p.width }

// Height returns the package height in centimeters.
func (p PackageAttributes) Height() float64 { return p.height }

func (p PackageAttributes) String() string {
	return fmt.Sprintf("%gkg %gx%gx%gcm", p.weight, p.length, p.width, p.height)
}

func (p *PackageAttributes) setWeight(weight float64) error {
	if weight <= 0 || weight > MaxPackageWeight {
		return errs.NewValueIsOutOfRangeError("weight", weight, 0, MaxPackageWeight)
	}
	p.weight = weight
	return nil
}

func (p *PackageAttributes) setDimension(name string, field *float64, value float64) error {
	if value <= 0 || value > MaxPackageDimension {
		return errs.NewValueIsOutOfRangeError(name, value, 0, MaxPackageDimension)
	}
	*field = value
	return nil
}
