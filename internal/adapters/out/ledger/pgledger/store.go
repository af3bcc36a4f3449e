package pgledger

import (
	"context"
	"errors"
	"time"

	"custody/internal/adapters/out/ledger/contract"
	"custody/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements contract.Store on PostgreSQL.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ contract.Store = (*GormStore)(nil)

// NewGormStore creates a store over db. Call Migrate first.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	return &GormStore{db: db, now: time.Now}, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&HeadDTO{}, &VersionDTO{}, &EventDTO{})
}

func (s *GormStore) Get(ctx context.Context, key string) (contract.Versioned, error) {
	var head HeadDTO
	if err := s.db.WithContext(ctx).First(&head, "ledger_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contract.Versioned{}, contract.ErrNotFound
		}
		return contract.Versioned{}, err
	}
	return contract.Versioned{Value: head.Value, Version: head.Version}, nil
}

// Put commits value, its version log entry and events in one transaction. The head
// row is the compare-and-set point: an insert that hits an existing key, or an update
// that matches no row at expectedVersion, is a version conflict.
func (s *GormStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64, events []contract.Event) error {
	now := s.now().UTC()
	txID := uuid.NewString()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result *gorm.DB
		if expectedVersion == 0 {
			result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&HeadDTO{
				Key:       key,
				Version:   1,
				Value:     value,
				UpdatedAt: now,
			})
		} else {
			result = tx.Model(&HeadDTO{}).
				Where("ledger_key = ? AND version = ?", key, expectedVersion).
				Updates(map[string]any{
					"version":    expectedVersion + 1,
					"value":      value,
					"updated_at": now,
				})
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return contract.ErrVersionConflict
		}

		if err := tx.Create(&VersionDTO{
			Key:         key,
			Seq:         expectedVersion + 1,
			TxID:        txID,
			Value:       value,
			CommittedAt: now,
		}).Error; err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}
		dtos := make([]EventDTO, 0, len(events))
		for _, ev := range events {
			dtos = append(dtos, EventDTO{TxID: txID, Key: key, Name: ev.Name, Payload: ev.Payload, CreatedAt: now})
		}
		return tx.Create(&dtos).Error
	})
}

func (s *GormStore) History(ctx context.Context, key string) ([]contract.Version, error) {
	var dtos []VersionDTO
	if err := s.db.WithContext(ctx).Where("ledger_key = ?", key).Order("seq").Find(&dtos).Error; err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, contract.ErrNotFound
	}

	versions := make([]contract.Version, 0, len(dtos))
	for _, dto := range dtos {
		versions = append(versions, contract.Version{
			TxID:        dto.TxID,
			Value:       dto.Value,
			IsDelete:    dto.IsDelete,
			CommittedAt: dto.CommittedAt.UTC(),
		})
	}
	return versions, nil
}

func (s *GormStore) List(ctx context.Context) ([][]byte, error) {
	var heads []HeadDTO
	if err := s.db.WithContext(ctx).Order("ledger_key").Find(&heads).Error; err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(heads))
	for _, h := range heads {
		values = append(values, h.Value)
	}
	return values, nil
}

// Events returns the events committed for key in commit order.
func (s *GormStore) Events(ctx context.Context, key string) ([]contract.Event, error) {
	var dtos []EventDTO
	if err := s.db.WithContext(ctx).Where("ledger_key = ?", key).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	events := make([]contract.Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, contract.Event{Name: dto.Name, Payload: dto.Payload})
	}
	return events, nil
}
