package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

// serviceManager implements ServiceManager
type serviceManager struct {
	db *gorm.DB

	course  CourseService
	profile ProfileService
	admin   AdminService
}

func NewServiceManager(
	repo repositories.Repository,
	db *gorm.DB,
	store storage.Client,
	publisher *events.Publisher,
	logger utils.Logger,
) ServiceManager {
	v := validator.NewValidator()

	return &serviceManager{
		db:      db,
		course:  NewCourseService(repo, store, publisher, logger, v),
		profile: NewProfileService(repo, store, logger, v),
		admin:   NewAdminService(repo, publisher, logger),
	}
}

func (m *serviceManager) Course() CourseService   { return m.course }
func (m *serviceManager) Profile() ProfileService { return m.profile }
func (m *serviceManager) Admin() AdminService     { return m.admin }

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
