package commands

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand represents the custodian reporting where the package is.
type UpdateLocationCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party
	location   kernel.Location

	guard guard.ConstructorGuard
}

// NewUpdateLocationCommand validates and creates a location report.
func NewUpdateLocationCommand(deliveryID delivery.ID, actor kernel.Party, location kernel.Location) (UpdateLocationCommand, error) {
	cmd := UpdateLocationCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
		location.Validate(),
	); err != nil {
		return UpdateLocationCommand{}, err
	}
	cmd.location = location

	return cmd, nil
}

func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

func (c UpdateLocationCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c UpdateLocationCommand) Actor() kernel.Party { return c.actor }

func (c UpdateLocationCommand) Location() kernel.Location { return c.location }
