package services

import (
	"context"
	"fmt"
	"io"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type AddMaterialRequest = validator.MaterialCreateRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest

// UploadFile carries an incoming file stream through the service layer.
type UploadFile struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// CourseAssets groups the optional files attached to a course submission.
type CourseAssets struct {
	Portada  *UploadFile
	Video    *UploadFile
	Material *UploadFile
}

type CourseResponse struct {
	*models.Curso
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type CourseListResponse struct {
	Cursos []*CourseResponse `json:"cursos"`
	Total  int64             `json:"total"`
	Page   int               `json:"page"`
	Size   int               `json:"size"`
}

type UserListResponse struct {
	Users []*models.Profile `json:"users"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

// ===== SERVICE ERRORS =====

// PermissionError is returned when an actor may not perform an operation.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// ===== SERVICES =====

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, assets *CourseAssets, actor *models.AppUser) (*CourseResponse, error)
	GetByID(ctx context.Context, id string, actor *models.AppUser) (*CourseResponse, error)
	List(ctx context.Context, filters repositories.CourseFilters, actor *models.AppUser) (*CourseListResponse, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, assets *CourseAssets, actor *models.AppUser) (*CourseResponse, error)
	SetPublicado(ctx context.Context, id string, publicado bool, actor *models.AppUser) error
	Delete(ctx context.Context, id string, actor *models.AppUser) error

	AddMaterial(ctx context.Context, cursoID string, req *AddMaterialRequest, actor *models.AppUser) (*models.Material, error)
	RemoveMaterial(ctx context.Context, cursoID, materialID string, actor *models.AppUser) error
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.Profile, error)
	SetProfilePhoto(ctx context.Context, id string, file *UploadFile) (*models.Profile, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, filters repositories.ProfileFilters) (*UserListResponse, error)
	SetHabilitado(ctx context.Context, profileID string, habilitado bool) (*models.Profile, error)
	SetRole(ctx context.Context, profileID string, rol models.Role) (*models.Profile, error)
	ExportUsersXLSX(ctx context.Context) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Course() CourseService
	Profile() ProfileService
	Admin() AdminService

	HealthCheck(ctx context.Context) error
}
