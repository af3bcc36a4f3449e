package commands

import (
	"context"

	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// SaveProfileCommandHandler creates or replaces a user profile.
type SaveProfileCommandHandler struct {
	profiles ports.ProfileStore
}

func NewSaveProfileCommandHandler(profiles ports.ProfileStore) (*SaveProfileCommandHandler, error) {
	if profiles == nil {
		return nil, errs.NewValueIsRequiredError("profiles")
	}
	return &SaveProfileCommandHandler{profiles: profiles}, nil
}

func (h *SaveProfileCommandHandler) Handle(ctx context.Context, cmd SaveProfileCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.profiles.SaveProfile(ctx, ports.Profile{
		UserID:  cmd.User().UserID(),
		Role:    cmd.User().Role(),
		Address: cmd.Address(),
	})
}
