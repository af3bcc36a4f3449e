package commands

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrDisputeHandoffCommandIsNotConstructed = errors.New(
	"DisputeHandoffCommand must be created via NewDisputeHandoffCommand constructor",
)

// DisputeHandoffCommand represents the target refusing a pending offer. The reason
// is one of the catalogued codes or free text.
type DisputeHandoffCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party
	reason     delivery.DisputeReason

	guard guard.ConstructorGuard
}

// NewDisputeHandoffCommand validates and creates a dispute command.
func NewDisputeHandoffCommand(deliveryID delivery.ID, actor kernel.Party, reason string) (DisputeHandoffCommand, error) {
	cmd := DisputeHandoffCommand{guard: guard.NewConstructorGuard()}

	r, reasonErr := delivery.NewDisputeReason(reason)
	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
		reasonErr,
	); err != nil {
		return DisputeHandoffCommand{}, err
	}
	cmd.reason = r

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DisputeHandoffCommand) Validate() error {
	return c.guard.Validate(ErrDisputeHandoffCommandIsNotConstructed)
}

func (c DisputeHandoffCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c DisputeHandoffCommand) Actor() kernel.Party { return c.actor }

func (c DisputeHandoffCommand) Reason() delivery.DisputeReason { return c.reason }
