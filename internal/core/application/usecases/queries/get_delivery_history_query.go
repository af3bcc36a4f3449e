package queries

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrGetDeliveryHistoryQueryIsNotConstructed = errors.New(
	"GetDeliveryHistoryQuery must be created via NewGetDeliveryHistoryQuery constructor",
)

// GetDeliveryHistoryQuery reads every committed version of a delivery. The ledger
// allows it for the seller, the customer and administrators.
type GetDeliveryHistoryQuery struct {
	deliveryID delivery.ID
	actor      kernel.Party

	guard guard.ConstructorGuard
}

func NewGetDeliveryHistoryQuery(deliveryID delivery.ID, actor kernel.Party) (GetDeliveryHistoryQuery, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GetDeliveryHistoryQuery{}, err
	}
	return GetDeliveryHistoryQuery{deliveryID: deliveryID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryHistoryQueryIsNotConstructed)
}

func (q GetDeliveryHistoryQuery) DeliveryID() delivery.ID { return q.deliveryID }

func (q GetDeliveryHistoryQuery) Actor() kernel.Party { return q.actor }
