package auth

import (
	"context"
	"fmt"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
)

// Resolver turns an authenticated principal id into its profile row.
type Resolver struct {
	profiles repositories.ProfileRepository
}

func NewResolver(profiles repositories.ProfileRepository) *Resolver {
	return &Resolver{profiles: profiles}
}

// FetchProfile returns repositories.ErrProfileNotFound when the principal
// completed sign-in but registration never created its profile row.
func (r *Resolver) FetchProfile(ctx context.Context, principalID string) (*models.Profile, error) {
	profile, err := r.profiles.GetByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile %s: %w", principalID, err)
	}
	return profile, nil
}
