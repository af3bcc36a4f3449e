package queries

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var (
	ErrListDeliveriesByCustodianQueryIsNotConstructed = errors.New(
		"ListDeliveriesByCustodianQuery must be created via NewListDeliveriesByCustodianQuery constructor",
	)
	ErrListDeliveriesByStatusQueryIsNotConstructed = errors.New(
		"ListDeliveriesByStatusQuery must be created via NewListDeliveriesByStatusQuery constructor",
	)
)

// ListDeliveriesByCustodianQuery lists the deliveries related to a user.
//
// Customers get their purchases, sellers their sales and transporters what they
// hold or are being offered. Administrators may name any custodian, or leave it
// empty to list every delivery. Non-administrators may leave it empty or name
// themselves.
type ListDeliveriesByCustodianQuery struct {
	actor       kernel.Party
	custodianID string

	guard guard.ConstructorGuard
}

func NewListDeliveriesByCustodianQuery(actor kernel.Party, custodianID string) (ListDeliveriesByCustodianQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListDeliveriesByCustodianQuery{}, err
	}
	if len(custodianID) > kernel.MaxUserIDLength {
		return ListDeliveriesByCustodianQuery{}, errs.NewValueIsOutOfRangeError(
			"custodianId", len(custodianID), 0, kernel.MaxUserIDLength)
	}
	return ListDeliveriesByCustodianQuery{
		actor:       actor,
		custodianID: custodianID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q ListDeliveriesByCustodianQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveriesByCustodianQueryIsNotConstructed)
}

func (q ListDeliveriesByCustodianQuery) Actor() kernel.Party { return q.actor }

func (q ListDeliveriesByCustodianQuery) CustodianID() string { return q.custodianID }

// ListDeliveriesByStatusQuery lists deliveries in one status. Administrators see all
// of them, everybody else only the ones they are involved in.
type ListDeliveriesByStatusQuery struct {
	actor  kernel.Party
	status delivery.Status

	guard guard.ConstructorGuard
}

func NewListDeliveriesByStatusQuery(actor kernel.Party, status delivery.Status) (ListDeliveriesByStatusQuery, error) {
	if err := errors.Join(actor.Validate(), status.Validate()); err != nil {
		return ListDeliveriesByStatusQuery{}, err
	}
	return ListDeliveriesByStatusQuery{actor: actor, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDeliveriesByStatusQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveriesByStatusQueryIsNotConstructed)
}

func (q ListDeliveriesByStatusQuery) Actor() kernel.Party { return q.actor }

func (q ListDeliveriesByStatusQuery) Status() delivery.Status { return q.status }
