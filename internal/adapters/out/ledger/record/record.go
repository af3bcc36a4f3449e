// Package record defines the JSON representation of deliveries stored on the ledger
// and converts it to and from the delivery aggregate. Ledger engines write it and the
// ledger gateway reads it back; both sides parse statuses and roles strictly.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
)

// TimeLayout is the timestamp format used in ledger records.
const TimeLayout = time.RFC3339Nano

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type PendingHandoff struct {
	FromUserID  string `json:"fromUserId"`
	FromRole    string `json:"fromRole"`
	ToUserID    string `json:"toUserId"`
	ToRole      string `json:"toRole"`
	InitiatedAt string `json:"initiatedAt"`
}

type Dispute struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	Reason     string `json:"reason"`
	FromStatus string `json:"fromStatus"`
	At         string `json:"at"`
}

// Delivery is one ledger version of a delivery.
type Delivery struct {
	DeliveryID           string          `json:"deliveryId"`
	OrderID              string          `json:"orderId"`
	SellerID             string          `json:"sellerId"`
	CustomerID           string          `json:"customerId"`
	PackageWeight        float64         `json:"packageWeight"`
	PackageDimensions    Dimensions      `json:"packageDimensions"`
	DeliveryStatus       string          `json:"deliveryStatus"`
	LastLocation         Location        `json:"lastLocation"`
	CurrentCustodianID   string          `json:"currentCustodianId"`
	CurrentCustodianRole string          `json:"currentCustodianRole"`
	PendingHandoff       *PendingHandoff `json:"pendingHandoff,omitempty"`
	LastDispute          *Dispute        `json:"lastDispute,omitempty"`
	UpdatedAt            string          `json:"updatedAt"`
}

// HistoryEntry is one committed version in a delivery's history.
type HistoryEntry struct {
	TxID      string    `json:"txId"`
	Timestamp string    `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Delivery  *Delivery `json:"delivery,omitempty"`
}

// StatusEvent is the payload of DeliveryCreated and DeliveryStatusChanged events.
type StatusEvent struct {
	DeliveryID string `json:"deliveryId"`
	OrderID    string `json:"orderId"`
	OldStatus  string `json:"oldStatus,omitempty"`
	NewStatus  string `json:"newStatus"`
	Timestamp  string `json:"timestamp"`
}

// Event names recorded by ledger engines.
const (
	EventDeliveryCreated       = "DeliveryCreated"
	EventDeliveryStatusChanged = "DeliveryStatusChanged"
)

// FromDomain converts an aggregate into its ledger record.
func FromDomain(d *delivery.Delivery) Delivery {
	s := d.Snapshot()
	r := Delivery{
		DeliveryID:    s.ID.String(),
		OrderID:       s.OrderID,
		SellerID:      s.SellerID,
		CustomerID:    s.CustomerID,
		PackageWeight: s.Package.Weight(),
		PackageDimensions: Dimensions{
			Length: s.Package.Length(),
			Width:  s.Package.Width(),
			Height: s.Package.Height(),
		},
		DeliveryStatus: s.Status.String(),
		LastLocation: Location{
			City:    s.Location.City(),
			State:   s.Location.State(),
			Country: s.Location.Country(),
		},
		CurrentCustodianID:   s.Custodian.UserID(),
		CurrentCustodianRole: s.Custodian.Role().String(),
		UpdatedAt:            s.UpdatedAt.UTC().Format(TimeLayout),
	}
	if p := s.Pending; p != nil {
		r.PendingHandoff = &PendingHandoff{
			FromUserID:  p.Initiator().UserID(),
			FromRole:    p.Initiator().Role().String(),
			ToUserID:    p.Target().UserID(),
			ToRole:      p.Target().Role().String(),
			InitiatedAt: p.InitiatedAt().UTC().Format(TimeLayout),
		}
	}
	if dp := s.Dispute; dp != nil {
		r.LastDispute = &Dispute{
			UserID:     dp.By.UserID(),
			Role:       dp.By.Role().String(),
			Reason:     dp.Reason.String(),
			FromStatus: dp.FromStatus.String(),
			At:         dp.At.UTC().Format(TimeLayout),
		}
	}
	return r
}

// ToDomain parses a ledger record back into an aggregate. Unknown statuses or roles
// are errors.
func (r Delivery) ToDomain() (*delivery.Delivery, error) {
	status, err := delivery.ParseStatus(r.DeliveryStatus)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime("updatedAt", r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var custodian kernel.Party
	if r.CurrentCustodianID != "" {
		if custodian, err = parseParty(r.CurrentCustodianID, r.CurrentCustodianRole); err != nil {
			return nil, fmt.Errorf("custodian: %w", err)
		}
	}

	var pending *delivery.PendingHandoff
	if p := r.PendingHandoff; p != nil {
		if pending, err = p.toDomain(); err != nil {
			return nil, err
		}
	}

	var dispute *delivery.Dispute
	if dp := r.LastDispute; dp != nil {
		if dispute, err = dp.toDomain(); err != nil {
			return nil, err
		}
	}

	loc, locErr := kernel.NewLocation(r.LastLocation.City, r.LastLocation.State, r.LastLocation.Country)
	pkg, pkgErr := kernel.NewPackageAttributes(r.PackageWeight,
		r.PackageDimensions.Length, r.PackageDimensions.Width, r.PackageDimensions.Height)
	if err := errors.Join(locErr, pkgErr); err != nil {
		return nil, err
	}

	return delivery.Restore(delivery.Snapshot{
		ID:         delivery.ID(r.DeliveryID),
		OrderID:    r.OrderID,
		SellerID:   r.SellerID,
		CustomerID: r.CustomerID,
		Status:     status,
		Custodian:  custodian,
		Pending:    pending,
		Location:   loc,
		Package:    pkg,
		Dispute:    dispute,
		UpdatedAt:  updatedAt,
	})
}

// Marshal encodes an aggregate as ledger JSON.
func Marshal(d *delivery.Delivery) ([]byte, error) {
	return json.Marshal(FromDomain(d))
}

// Unmarshal decodes ledger JSON into an aggregate.
func Unmarshal(data []byte) (*delivery.Delivery, error) {
	var r Delivery
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode delivery record: %w", err)
	}
	return r.ToDomain()
}

func (p *PendingHandoff) toDomain() (*delivery.PendingHandoff, error) {
	from, err := parseParty(p.FromUserID, p.FromRole)
	if err != nil {
		return nil, fmt.Errorf("handoff initiator: %w", err)
	}
	to, err := parseParty(p.ToUserID, p.ToRole)
	if err != nil {
		return nil, fmt.Errorf("handoff target: %w", err)
	}
	at, err := parseTime("initiatedAt", p.InitiatedAt)
	if err != nil {
		return nil, err
	}
	return delivery.NewPendingHandoff(from, to, at)
}

func (d *Dispute) toDomain() (*delivery.Dispute, error) {
	by, err := parseParty(d.UserID, d.Role)
	if err != nil {
		return nil, fmt.Errorf("disputed by: %w", err)
	}
	from, err := delivery.ParseStatus(d.FromStatus)
	if err != nil {
		return nil, err
	}
	at, err := parseTime("dispute.at", d.At)
	if err != nil {
		return nil, err
	}
	return &delivery.Dispute{By: by, Reason: delivery.DisputeReason(d.Reason), FromStatus: from, At: at}, nil
}

func parseParty(userID, role string) (kernel.Party, error) {
	r, err := kernel.ParseRole(role)
	if err != nil {
		return kernel.Party{}, err
	}
	return kernel.NewParty(userID, r)
}

func parseTime(name, value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return t.UTC(), nil
}
