package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
)

// Profile is what the custody core needs to know about a user.
type Profile struct {
	UserID  string
	Role    kernel.Role
	Address kernel.Location
}

// ProfileDirectory resolves user profiles. Customers confirming the final leg are
// located at their profile address, and sellers ship from theirs.
type ProfileDirectory interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

// ProfileStore is a ProfileDirectory that can also record profiles.
type ProfileStore interface {
	ProfileDirectory
	SaveProfile(ctx context.Context, p Profile) error
}
