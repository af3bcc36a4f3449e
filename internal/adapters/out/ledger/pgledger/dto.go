// Package pgledger keeps the ledger world state in PostgreSQL through GORM. Every key
// has a head row holding its latest value and version, plus an append-only version
// log and the events emitted by each write.
package pgledger

import "time"

// HeadDTO is the latest committed value of a key.
type HeadDTO struct {
	Key       string `gorm:"column:ledger_key;primaryKey;size:64"`
	Version   int64  `gorm:"not null"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (HeadDTO) TableName() string {
	return "ledger_heads"
}

// VersionDTO is one committed write of a key.
type VersionDTO struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Key         string `gorm:"column:ledger_key;size:64;not null;uniqueIndex:idx_ledger_versions_key_seq"`
	Seq         int64  `gorm:"not null;uniqueIndex:idx_ledger_versions_key_seq"`
	TxID        string `gorm:"size:36;not null;uniqueIndex"`
	Value       []byte `gorm:"type:bytea"`
	IsDelete    bool
	CommittedAt time.Time `gorm:"not null"`
}

func (VersionDTO) TableName() string {
	return "ledger_versions"
}

// EventDTO is an event emitted by a committed write.
type EventDTO struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	TxID      string `gorm:"size:36;not null;index"`
	Key       string `gorm:"column:ledger_key;size:64;not null;index"`
	Name      string `gorm:"size:64;not null"`
	Payload   []byte `gorm:"type:bytea"`
	CreatedAt time.Time
}

func (EventDTO) TableName() string {
	return "ledger_events"
}
