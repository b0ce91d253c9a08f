package repositories

import (
	"context"
	"errors"

	"github.com/ElStudioBarberia/course-service/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrCourseNotFound  = errors.New("course not found")
)

type ProfileFilters struct {
	Query  string
	Rol    *string
	Limit  int
	Offset int
}

type CourseFilters struct {
	InstructorID *string
	Publicado    *bool
	Limit        int
	Offset       int
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	// UpdateFields applies a partial update (habilitado or rol flips) by id.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	List(ctx context.Context, filters ProfileFilters) ([]*models.Profile, int64, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Curso, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Curso, int64, error)
	Create(ctx context.Context, curso *models.Curso) error
	Update(ctx context.Context, curso *models.Curso) error
	SetPublicado(ctx context.Context, id string, publicado bool) error
	Delete(ctx context.Context, id string) error
}

type MaterialRepository interface {
	ListByCourse(ctx context.Context, cursoID string) ([]*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}

// Repository aggregates all data access for the service.
type Repository interface {
	Profile() ProfileRepository
	Course() CourseRepository
	Material() MaterialRepository
}
