package commands

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrInitiateHandoffCommandIsNotConstructed = errors.New(
	"InitiateHandoffCommand must be created via NewInitiateHandoffCommand constructor",
)

// InitiateHandoffCommand represents an offer of a package to the next holder.
// The actor is the current custodian, or the seller before pickup; the target is a
// transporter, or the delivery's customer for the final leg.
//
// Example:
//
//	cmd, err := NewInitiateHandoffCommand(deliveryID, seller, transporter)
//	if err != nil {
//	    return fmt.Errorf("invalid handoff: %w", err)
//	}
//	d, err := coordinator.Initiate(ctx, cmd)
type InitiateHandoffCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party
	target     kernel.Party

	guard guard.ConstructorGuard
}

// NewInitiateHandoffCommand validates and creates an initiate command.
func NewInitiateHandoffCommand(deliveryID delivery.ID, actor, target kernel.Party) (InitiateHandoffCommand, error) {
	cmd := InitiateHandoffCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
		setParty(&cmd.target, target),
	); err != nil {
		return InitiateHandoffCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c InitiateHandoffCommand) Validate() error {
	return c.guard.Validate(ErrInitiateHandoffCommandIsNotConstructed)
}

func (c InitiateHandoffCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c InitiateHandoffCommand) Actor() kernel.Party { return c.actor }

func (c InitiateHandoffCommand) Target() kernel.Party { return c.target }

func setDeliveryID(field *delivery.ID, id delivery.ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*field = id
	return nil
}

func setParty(field *kernel.Party, p kernel.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}
	*field = p
	return nil
}
