package queries

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery reads the current ledger record of a delivery as the given user.
type GetDeliveryQuery struct {
	deliveryID delivery.ID
	actor      kernel.Party

	guard guard.ConstructorGuard
}

// NewGetDeliveryQuery creates a read of one delivery.
func NewGetDeliveryQuery(deliveryID delivery.ID, actor kernel.Party) (GetDeliveryQuery, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{deliveryID: deliveryID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

func (q GetDeliveryQuery) DeliveryID() delivery.ID { return q.deliveryID }

func (q GetDeliveryQuery) Actor() kernel.Party { return q.actor }
