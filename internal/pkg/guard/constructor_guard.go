// Package guard holds the constructor guard shared by value objects, commands
// and queries. A guarded type can tell a value built by its constructor apart
// from a zero value assembled by hand.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil
// error and the guard was never constructed.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a struct as built through its constructor.
//
// Embed it as a private field and set it with NewConstructorGuard inside the
// constructor; the owning type's Validate method then delegates to
// ConstructorGuard.Validate:
//
//	type HandoffTarget struct {
//	    party kernel.Party
//	    guard guard.ConstructorGuard
//	}
//
//	func (t HandoffTarget) Validate() error {
//	    return t.guard.Validate(ErrHandoffTargetIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
