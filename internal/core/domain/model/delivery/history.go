package delivery

import "time"

// HistoryEntry is one committed ledger version of a delivery, in commit order.
type HistoryEntry struct {
	TxID      string
	Timestamp time.Time
	IsDelete  bool
	Delivery  *Delivery
}

// StatusChanged is the event the ledger records whenever a transition changes
// a delivery's status.
type StatusChanged struct {
	DeliveryID ID
	OrderID    string
	OldStatus  Status
	NewStatus  Status
	Timestamp  time.Time
}
