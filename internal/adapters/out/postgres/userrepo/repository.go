// Package userrepo stores the user profiles the custody core needs: the role a
// user signed up with and the address packages ship from or are delivered to.
package userrepo

import (
	"context"
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileDTO is the users table row.
type ProfileDTO struct {
	UserID    string `gorm:"primaryKey;size:100"`
	Role      string `gorm:"size:20;not null"`
	City      string `gorm:"size:100;not null"`
	State     string `gorm:"size:100;not null"`
	Country   string `gorm:"size:100;not null"`
	UpdatedAt time.Time
}

func (ProfileDTO) TableName() string {
	return "user_profiles"
}

// GormProfileDirectory implements ports.ProfileDirectory using GORM.
type GormProfileDirectory struct {
	db *gorm.DB
}

func NewGormProfileDirectory(db *gorm.DB) *GormProfileDirectory {
	return &GormProfileDirectory{db: db}
}

// GetProfile returns the profile of userID.
func (r *GormProfileDirectory) GetProfile(ctx context.Context, userID string) (ports.Profile, error) {
	if userID == "" {
		return ports.Profile{}, errs.NewValueIsRequiredError("userId")
	}

	var dto ProfileDTO
	if err := r.db.WithContext(ctx).First(&dto, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Profile{}, errs.NewObjectNotFoundError("profile", userID)
		}
		return ports.Profile{}, err
	}

	role, err := kernel.ParseRole(dto.Role)
	if err != nil {
		return ports.Profile{}, err
	}
	address, err := kernel.NewLocation(dto.City, dto.State, dto.Country)
	if err != nil {
		return ports.Profile{}, err
	}

	return ports.Profile{UserID: dto.UserID, Role: role, Address: address}, nil
}

// SaveProfile creates or replaces a profile.
func (r *GormProfileDirectory) SaveProfile(ctx context.Context, p ports.Profile) error {
	if p.UserID == "" {
		return errs.NewValueIsRequiredError("userId")
	}
	if err := p.Address.Validate(); err != nil {
		return err
	}
	if _, err := kernel.ParseRole(p.Role.String()); err != nil {
		return err
	}

	dto := ProfileDTO{
		UserID:    p.UserID,
		Role:      p.Role.String(),
		City:      p.Address.City(),
		State:     p.Address.State(),
		Country:   p.Address.Country(),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&dto).Error
}
