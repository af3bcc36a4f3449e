package commands

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var (
	ErrCancelHandoffCommandIsNotConstructed = errors.New(
		"CancelHandoffCommand must be created via NewCancelHandoffCommand constructor",
	)
	ErrCancelDeliveryCommandIsNotConstructed = errors.New(
		"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
	)
)

// CancelHandoffCommand represents the initiator withdrawing a pending offer.
type CancelHandoffCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party

	guard guard.ConstructorGuard
}

// NewCancelHandoffCommand validates and creates a withdraw command.
func NewCancelHandoffCommand(deliveryID delivery.ID, actor kernel.Party) (CancelHandoffCommand, error) {
	cmd := CancelHandoffCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
	); err != nil {
		return CancelHandoffCommand{}, err
	}

	return cmd, nil
}

func (c CancelHandoffCommand) Validate() error {
	return c.guard.Validate(ErrCancelHandoffCommandIsNotConstructed)
}

func (c CancelHandoffCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c CancelHandoffCommand) Actor() kernel.Party { return c.actor }

// CancelDeliveryCommand represents the customer cancelling a delivery before pickup.
type CancelDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party

	guard guard.ConstructorGuard
}

// NewCancelDeliveryCommand validates and creates a cancel command.
func NewCancelDeliveryCommand(deliveryID delivery.ID, actor kernel.Party) (CancelDeliveryCommand, error) {
	cmd := CancelDeliveryCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
	); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return cmd, nil
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c CancelDeliveryCommand) Actor() kernel.Party { return c.actor }
