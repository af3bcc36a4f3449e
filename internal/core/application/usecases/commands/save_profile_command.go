package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrSaveProfileCommandIsNotConstructed = errors.New(
	"SaveProfileCommand must be created via NewSaveProfileCommand constructor",
)

// SaveProfileCommand records where a user ships from or receives packages.
// A user's role is the role they act in when saving the profile.
type SaveProfileCommand struct { //nolint:recvcheck //using for validation
	user    kernel.Party
	address kernel.Location

	guard guard.ConstructorGuard
}

// NewSaveProfileCommand validates and creates a profile update.
func NewSaveProfileCommand(user kernel.Party, address kernel.Location) (SaveProfileCommand, error) {
	if err := errors.Join(user.Validate(), address.Validate()); err != nil {
		return SaveProfileCommand{}, err
	}
	return SaveProfileCommand{user: user, address: address, guard: guard.NewConstructorGuard()}, nil
}

func (c SaveProfileCommand) Validate() error {
	return c.guard.Validate(ErrSaveProfileCommandIsNotConstructed)
}

func (c SaveProfileCommand) User() kernel.Party { return c.user }

func (c SaveProfileCommand) Address() kernel.Location { return c.address }
