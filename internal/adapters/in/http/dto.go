package http

import (
	"time"

	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every rejected request.
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
	FromState string `json:"fromState,omitempty"`
}

type Party struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Package struct {
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type NewOrder struct {
	SellerID string      `json:"sellerId"`
	Items    []OrderItem `json:"items"`
}

type OrderCreated struct {
	OrderID openapi_types.UUID `json:"orderId"`
}

type DeliveryCreated struct {
	DeliveryID string `json:"deliveryId"`
}

type Order struct {
	OrderID     openapi_types.UUID `json:"orderId"`
	SellerID    string             `json:"sellerId"`
	CustomerID  string             `json:"customerId"`
	Status      string             `json:"status"`
	DeliveryID  string             `json:"deliveryId,omitempty"`
	TotalAmount int64              `json:"totalAmount"`
	Items       []OrderItem        `json:"items"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type PendingHandoff struct {
	Initiator   Party     `json:"initiator"`
	Target      Party     `json:"target"`
	InitiatedAt time.Time `json:"initiatedAt"`
}

type Dispute struct {
	By         Party     `json:"by"`
	Reason     string    `json:"reason"`
	FromStatus string    `json:"fromStatus"`
	At         time.Time `json:"at"`
}

type Delivery struct {
	DeliveryID       string          `json:"deliveryId"`
	OrderID          string          `json:"orderId"`
	SellerID         string          `json:"sellerId"`
	CustomerID       string          `json:"customerId"`
	Status           string          `json:"status"`
	CurrentCustodian *Party          `json:"currentCustodian,omitempty"`
	PendingHandoff   *PendingHandoff `json:"pendingHandoff,omitempty"`
	LastLocation     *Location       `json:"lastLocation,omitempty"`
	Package          Package         `json:"package"`
	LastDispute      *Dispute        `json:"lastDispute,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type HistoryEntry struct {
	TxID      string    `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Delivery  *Delivery `json:"delivery,omitempty"`
}

type HandoffTarget struct {
	TargetID   string `json:"targetId"`
	TargetRole string `json:"targetRole"`
}

type HandoffCondition struct {
	Location Location `json:"location"`
	Package  Package  `json:"package"`
}

type DisputeRequest struct {
	Reason string `json:"reason"`
}

type SweepResult struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

func (l Location) toDomain() (kernel.Location, error) {
	return kernel.NewLocation(l.City, l.State, l.Country)
}

func (p Package) toDomain() (kernel.PackageAttributes, error) {
	return kernel.NewPackageAttributes(p.Weight, p.Length, p.Width, p.Height)
}

func partyResponse(p kernel.Party) Party {
	return Party{UserID: p.UserID(), Role: p.Role().String()}
}

func locationResponse(l kernel.Location) Location {
	return Location{City: l.City(), State: l.State(), Country: l.Country()}
}

func orderResponse(v queries.OrderView) Order {
	items := make([]OrderItem, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, OrderItem(it))
	}
	return Order{
		OrderID:     v.ID.Bytes(),
		SellerID:    v.SellerID,
		CustomerID:  v.CustomerID,
		Status:      v.Status.String(),
		DeliveryID:  v.DeliveryID.String(),
		TotalAmount: v.TotalAmount,
		Items:       items,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func deliveryResponse(d *delivery.Delivery) Delivery {
	pkg := d.Package()
	resp := Delivery{
		DeliveryID: d.ID().String(),
		OrderID:    d.OrderID(),
		SellerID:   d.SellerID(),
		CustomerID: d.CustomerID(),
		Status:     d.Status().String(),
		Package: Package{
			Weight: pkg.Weight(),
			Length: pkg.Length(),
			Width:  pkg.Width(),
			Height: pkg.Height(),
		},
		UpdatedAt: d.UpdatedAt(),
	}

	if c := d.Custodian(); !c.IsZero() {
		custodian := partyResponse(c)
		resp.CurrentCustodian = &custodian
	}
	if p := d.PendingHandoff(); p != nil {
		resp.PendingHandoff = &PendingHandoff{
			Initiator:   partyResponse(p.Initiator()),
			Target:      partyResponse(p.Target()),
			InitiatedAt: p.InitiatedAt(),
		}
	}
	if l := d.LastLocation(); !l.IsZero() {
		loc := locationResponse(l)
		resp.LastLocation = &loc
	}
	if dispute := d.LastDispute(); dispute != nil {
		resp.LastDispute = &Dispute{
			By:         partyResponse(dispute.By),
			Reason:     dispute.Reason.String(),
			FromStatus: dispute.FromStatus.String(),
			At:         dispute.At,
		}
	}
	return resp
}

func deliveriesResponse(ds []*delivery.Delivery) []Delivery {
	resp := make([]Delivery, 0, len(ds))
	for _, d := range ds {
		resp = append(resp, deliveryResponse(d))
	}
	return resp
}

func historyResponse(entries []delivery.HistoryEntry) []HistoryEntry {
	resp := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		entry := HistoryEntry{TxID: e.TxID, Timestamp: e.Timestamp, IsDelete: e.IsDelete}
		if e.Delivery != nil {
			d := deliveryResponse(e.Delivery)
			entry.Delivery = &d
		}
		resp = append(resp, entry)
	}
	return resp
}
