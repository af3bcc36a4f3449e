// Package order provides the off-ledger Order aggregate: the commercial record of a
// purchase and the projection of its delivery's ledger status.
//
// The package includes:
//   - Order: the aggregate root holding ownership, items and the projected status
//   - Item: an order line value object
//
// Key business rules:
//   - Orders are created in PENDING_CONFIRMATION with no delivery
//   - The seller confirms an order by linking it to a newly created delivery
//   - The customer may cancel an order only before it is confirmed
//   - After linking, the order's status is only ever written by the status projector
//     and mirrors the delivery's status on the ledger
package order
