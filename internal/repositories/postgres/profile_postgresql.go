package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ElStudioBarberia/course-service/internal/cache"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProfilePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProfileRepository {
	return &ProfilePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// GetByID retrieves a profile by principal id with caching
func (p *ProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var profile models.Profile

	err := p.cacheManager.Profile.CacheOrExecute(ctx, cacheKey, &profile, cache.ProfileCacheConfig.TTL, func() (interface{}, error) {
		var row models.Profile
		if err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		return &row, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, repositories.ErrProfileNotFound
		}
		return nil, err
	}

	return &profile, nil
}

func (p *ProfilePostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	cacheKey := fmt.Sprintf("email:%s", email)
	var profile models.Profile

	err := p.cacheManager.Profile.CacheOrExecute(ctx, cacheKey, &profile, cache.ProfileCacheConfig.TTL, func() (interface{}, error) {
		var row models.Profile
		if err := p.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to get profile by email: %w", err)
		}
		return &row, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, repositories.ErrProfileNotFound
		}
		return nil, err
	}

	return &profile, nil
}

func (p *ProfilePostgreSQL) Create(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	cache.InvalidateProfileCache(ctx, p.cacheManager, profile.ID, profile.Email)
	return nil
}

func (p *ProfilePostgreSQL) Update(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	cache.InvalidateProfileCache(ctx, p.cacheManager, profile.ID, profile.Email)
	return nil
}

// UpdateFields applies a partial update, used for the admin habilitado/rol
// flips so an unrelated stale struct can't overwrite other columns.
func (p *ProfilePostgreSQL) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	result := p.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrProfileNotFound
	}
	cache.InvalidateProfileCache(ctx, p.cacheManager, id, "*")
	return nil
}

func (p *ProfilePostgreSQL) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	query := p.db.WithContext(ctx).Model(&models.Profile{})
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("nombre ILIKE ? OR email ILIKE ?", like, like)
	}
	if filters.Rol != nil {
		query = query.Where("LOWER(rol) = LOWER(?)", *filters.Rol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	var profiles []*models.Profile
	err := query.
		Order("fecha_registro DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, total, nil
}
