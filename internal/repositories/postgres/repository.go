package postgres

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	profile  repositories.ProfileRepository
	course   repositories.CourseRepository
	material repositories.MaterialRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

func NewPostgreSQLRepository(config RepositoryConfig) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
		profile:     NewProfilePostgreSQL(config.DB, config.RedisClient),
		course:      NewCoursePostgreSQL(config.DB, config.RedisClient),
		material:    NewMaterialPostgreSQL(config.DB, config.RedisClient),
	}
}

// Initialize runs schema migration for the owned tables.
func (r *PostgreSQLRepository) Initialize() error {
	if err := r.db.AutoMigrate(&models.Profile{}, &models.Curso{}, &models.Material{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository {
	return r.profile
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Material() repositories.MaterialRepository {
	return r.material
}
