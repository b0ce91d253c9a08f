package services

import (
	"context"
	"fmt"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	store     storage.Client
	logger    utils.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, store storage.Client, logger utils.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: validator,
	}
}

func (s *profileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.repo.Profile().GetByID(ctx, id)
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.Profile, error) {
	if errors := s.validator.Validate(req); len(errors) > 0 {
		return nil, errors
	}

	fields := make(map[string]any)
	if req.Nombre != nil {
		fields["nombre"] = *req.Nombre
	}
	if req.FotoPerfil != nil {
		fields["foto_perfil"] = *req.FotoPerfil
	}
	if len(fields) == 0 {
		return s.repo.Profile().GetByID(ctx, id)
	}

	if err := s.repo.Profile().UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.repo.Profile().GetByID(ctx, id)
}

// SetProfilePhoto uploads the new picture, points the profile at it and then
// removes the previous picture best-effort. Placeholder avatars hosted
// elsewhere never parse as stored objects, so they are left alone.
func (s *profileService) SetProfilePhoto(ctx context.Context, id string, file *UploadFile) (*models.Profile, error) {
	if err := storage.ProfilePicturesPolicy.Allows(file.ContentType, file.Size); err != nil {
		return nil, err
	}

	profile, err := s.repo.Profile().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := storage.NewObjectName(file.Filename)
	err = s.store.Upload(ctx, storage.BucketProfilePictures, path, file.Reader, file.Size, storage.UploadOptions{
		ContentType:  file.ContentType,
		CacheControl: "3600",
		Upsert:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	url := s.store.PublicURL(storage.BucketProfilePictures, path)
	if err := s.repo.Profile().UpdateFields(ctx, id, map[string]any{"foto_perfil": url}); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), storage.BucketProfilePictures, path); rmErr != nil {
			s.logger.Warn("failed to clean up orphaned profile picture", "path", path, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	if old := profile.FotoPerfil; old != nil {
		if ref, ok := storage.ExtractObjectPath(*old); ok && ref.Bucket == storage.BucketProfilePictures {
			if err := s.store.Remove(ctx, ref.Bucket, ref.Path); err != nil {
				s.logger.Warn("failed to remove previous profile picture", "path", ref.Path, "error", err)
			}
		}
	}

	profile.FotoPerfil = &url
	return profile, nil
}
