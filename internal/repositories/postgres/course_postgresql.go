package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ElStudioBarberia/course-service/internal/cache"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// GetByID retrieves a course with its instructor and materials preloaded
func (c *CoursePostgreSQL) GetByID(ctx context.Context, id string) (*models.Curso, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var curso models.Curso

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &curso, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var row models.Curso
		err := c.db.WithContext(ctx).
			Preload("Instructor").
			Preload("Materiales", func(db *gorm.DB) *gorm.DB {
				return db.Order("materiales.fecha_creacion ASC")
			}).
			First(&row, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &row, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, repositories.ErrCourseNotFound
		}
		return nil, err
	}

	return &curso, nil
}

// List returns courses newest-first. The publish filter is how student
// visibility is enforced; instructors list their own drafts by id.
func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Curso, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	query := c.db.WithContext(ctx).Model(&models.Curso{})
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.Publicado != nil {
		query = query.Where("publicado = ?", *filters.Publicado)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var cursos []*models.Curso
	err := query.
		Preload("Instructor").
		Order("fecha_creacion DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&cursos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return cursos, total, nil
}

func (c *CoursePostgreSQL) Create(ctx context.Context, curso *models.Curso) error {
	if curso.ID == "" {
		curso.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if curso.FechaCreacion.IsZero() {
		curso.FechaCreacion = now
	}
	curso.ActualizadoEn = now

	if err := c.db.WithContext(ctx).Create(curso).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, curso.ID, curso.InstructorID)
	return nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, curso *models.Curso) error {
	curso.ActualizadoEn = time.Now().UTC()
	if err := c.db.WithContext(ctx).Save(curso).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, curso.ID, curso.InstructorID)
	return nil
}

func (c *CoursePostgreSQL) SetPublicado(ctx context.Context, id string, publicado bool) error {
	result := c.db.WithContext(ctx).Model(&models.Curso{}).Where("id = ?", id).Updates(map[string]any{
		"publicado":      publicado,
		"actualizado_en": time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set publish status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrCourseNotFound
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id, "*")
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Delete(&models.Curso{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrCourseNotFound
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id, "*")
	return nil
}

type MaterialPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMaterialPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MaterialRepository {
	return &MaterialPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (m *MaterialPostgreSQL) ListByCourse(ctx context.Context, cursoID string) ([]*models.Material, error) {
	var materiales []*models.Material
	err := m.db.WithContext(ctx).
		Where("curso_id = ?", cursoID).
		Order("fecha_creacion ASC").
		Find(&materiales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materiales, nil
}

func (m *MaterialPostgreSQL) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	if material.FechaCreacion.IsZero() {
		material.FechaCreacion = time.Now().UTC()
	}
	if err := m.db.WithContext(ctx).Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	cache.InvalidateCourseCache(ctx, m.cacheManager, material.CursoID, "*")
	return nil
}

func (m *MaterialPostgreSQL) Delete(ctx context.Context, id string) error {
	if err := m.db.WithContext(ctx).Delete(&models.Material{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}
