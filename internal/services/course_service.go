package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	store     storage.Client
	publisher *events.Publisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, store storage.Client, publisher *events.Publisher, logger utils.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Create stores the submitted files first and only then inserts the row.
// Uploads happen one at a time in a fixed order so a failure leaves no row
// pointing at missing objects; if the insert itself fails, the objects
// uploaded in this submission are removed best-effort.
func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, assets *CourseAssets, actor *models.AppUser) (*CourseResponse, error) {
	s.logger.Info("creating course", "actor_id", actor.ID, "titulo", req.Titulo)

	if errors := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errors) > 0 {
		return nil, errors
	}
	if !canManageCourses(actor) {
		return nil, NewPermissionError(actor.ID, "curso", "create", "requires Barbero or Administrador role")
	}

	curso := &models.Curso{
		ID:           uuid.NewString(),
		Titulo:       req.Titulo,
		Descripcion:  req.Descripcion,
		Categorias:   req.Categorias,
		Publicado:    req.Publicado,
		InstructorID: actor.ID,
	}

	var uploaded []string
	cleanup := func() {
		if len(uploaded) == 0 {
			return
		}
		if err := s.store.Remove(context.WithoutCancel(ctx), storage.BucketCursos, uploaded...); err != nil {
			s.logger.Warn("failed to clean up uploaded course objects", "paths", uploaded, "error", err)
		}
	}

	if assets != nil {
		for _, part := range []struct {
			file *UploadFile
			dest **string
		}{
			{assets.Video, &curso.VideoURL},
			{assets.Material, &curso.MaterialURL},
			{assets.Portada, &curso.ImagenPortadaURL},
		} {
			if part.file == nil {
				continue
			}
			url, path, err := s.uploadCourseAsset(ctx, part.file)
			if err != nil {
				cleanup()
				return nil, err
			}
			uploaded = append(uploaded, path)
			*part.dest = &url
		}
	}

	if err := s.repo.Course().Create(ctx, curso); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	if curso.Publicado {
		s.publisher.CoursePublished(ctx, curso)
	}

	s.logger.Info("course created", "curso_id", curso.ID)
	return s.toResponse(curso, actor), nil
}

func (s *courseService) GetByID(ctx context.Context, id string, actor *models.AppUser) (*CourseResponse, error) {
	curso, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !curso.Publicado && !canEditCourse(curso, actor) {
		return nil, repositories.ErrCourseNotFound
	}

	return s.toResponse(curso, actor), nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, actor *models.AppUser) (*CourseListResponse, error) {
	// Students only ever see the published catalog. Instructors see their
	// own drafts, admins see everything.
	if actor == nil || actor.Role == models.RoleEstudiante {
		published := true
		filters.Publicado = &published
	} else if actor.Role == models.RoleBarbero && filters.Publicado == nil {
		if filters.InstructorID == nil || *filters.InstructorID != actor.ID {
			published := true
			filters.Publicado = &published
		}
	}

	cursos, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	resp := &CourseListResponse{
		Cursos: make([]*CourseResponse, 0, len(cursos)),
		Total:  total,
		Size:   filters.Limit,
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, c := range cursos {
		resp.Cursos = append(resp.Cursos, s.toResponse(c, actor))
	}
	return resp, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, assets *CourseAssets, actor *models.AppUser) (*CourseResponse, error) {
	if errors := s.validator.GetBusinessValidator().ValidateCourseUpdate(req); len(errors) > 0 {
		return nil, errors
	}

	curso, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEditCourse(curso, actor) {
		return nil, NewPermissionError(actor.ID, "curso", "update", "not instructor or Administrador")
	}

	if req.Titulo != nil {
		curso.Titulo = *req.Titulo
	}
	if req.Descripcion != nil {
		curso.Descripcion = *req.Descripcion
	}
	if req.Categorias != nil {
		curso.Categorias = req.Categorias
	}
	wasPublicado := curso.Publicado
	if req.Publicado != nil {
		curso.Publicado = *req.Publicado
	}

	// Replaced assets: upload the new object first, remember the old URL and
	// remove it only after the row update lands.
	var uploaded, replaced []string
	cleanup := func() {
		if len(uploaded) == 0 {
			return
		}
		if err := s.store.Remove(context.WithoutCancel(ctx), storage.BucketCursos, uploaded...); err != nil {
			s.logger.Warn("failed to clean up uploaded course objects", "paths", uploaded, "error", err)
		}
	}

	if assets != nil {
		for _, part := range []struct {
			file *UploadFile
			dest **string
		}{
			{assets.Video, &curso.VideoURL},
			{assets.Material, &curso.MaterialURL},
			{assets.Portada, &curso.ImagenPortadaURL},
		} {
			if part.file == nil {
				continue
			}
			url, path, err := s.uploadCourseAsset(ctx, part.file)
			if err != nil {
				cleanup()
				return nil, err
			}
			uploaded = append(uploaded, path)
			if old := *part.dest; old != nil {
				if ref, ok := storage.ExtractObjectPath(*old); ok && ref.Bucket == storage.BucketCursos {
					replaced = append(replaced, ref.Path)
				}
			}
			*part.dest = &url
		}
	}

	if err := s.repo.Course().Update(ctx, curso); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	if len(replaced) > 0 {
		if err := s.store.Remove(context.WithoutCancel(ctx), storage.BucketCursos, replaced...); err != nil {
			s.logger.Warn("failed to remove replaced course objects", "paths", replaced, "error", err)
		}
	}

	if !wasPublicado && curso.Publicado {
		s.publisher.CoursePublished(ctx, curso)
	}

	return s.toResponse(curso, actor), nil
}

func (s *courseService) SetPublicado(ctx context.Context, id string, publicado bool, actor *models.AppUser) error {
	curso, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canEditCourse(curso, actor) {
		return NewPermissionError(actor.ID, "curso", "publish", "not instructor or Administrador")
	}

	if err := s.repo.Course().SetPublicado(ctx, id, publicado); err != nil {
		return fmt.Errorf("failed to update course visibility: %w", err)
	}

	if publicado && !curso.Publicado {
		curso.Publicado = true
		s.publisher.CoursePublished(ctx, curso)
	}
	return nil
}

// Delete removes the stored objects referenced by the course and its
// materials, then the rows. Object removal failures are logged and do not
// block the delete: a leaked object beats a row pointing at nothing.
func (s *courseService) Delete(ctx context.Context, id string, actor *models.AppUser) error {
	curso, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canEditCourse(curso, actor) {
		return NewPermissionError(actor.ID, "curso", "delete", "not instructor or Administrador")
	}

	byBucket := make(map[string][]string)
	collect := func(u *string) {
		if u == nil || *u == "" {
			return
		}
		if ref, ok := storage.ExtractObjectPath(*u); ok {
			byBucket[ref.Bucket] = append(byBucket[ref.Bucket], ref.Path)
		}
	}
	collect(curso.ImagenPortadaURL)
	collect(curso.VideoURL)
	collect(curso.MaterialURL)
	for i := range curso.Materiales {
		collect(&curso.Materiales[i].URL)
	}

	for bucket, paths := range byBucket {
		if err := s.store.Remove(ctx, bucket, paths...); err != nil {
			s.logger.Warn("failed to remove course objects", "curso_id", id, "bucket", bucket, "error", err)
		}
	}

	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("course deleted", "curso_id", id, "actor_id", actor.ID)
	return nil
}

// ===== MATERIALS =====

func (s *courseService) AddMaterial(ctx context.Context, cursoID string, req *AddMaterialRequest, actor *models.AppUser) (*models.Material, error) {
	if errors := s.validator.Validate(req); len(errors) > 0 {
		return nil, errors
	}

	curso, err := s.repo.Course().GetByID(ctx, cursoID)
	if err != nil {
		return nil, err
	}
	if !canEditCourse(curso, actor) {
		return nil, NewPermissionError(actor.ID, "material", "create", "not instructor or Administrador")
	}

	material := &models.Material{
		ID:            uuid.NewString(),
		CursoID:       cursoID,
		Nombre:        req.Titulo,
		Tipo:          models.MaterialTipo(req.Tipo),
		URL:           req.URL,
		FechaCreacion: time.Now().UTC(),
	}
	if err := s.repo.Material().Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return material, nil
}

func (s *courseService) RemoveMaterial(ctx context.Context, cursoID, materialID string, actor *models.AppUser) error {
	curso, err := s.repo.Course().GetByID(ctx, cursoID)
	if err != nil {
		return err
	}
	if !canEditCourse(curso, actor) {
		return NewPermissionError(actor.ID, "material", "delete", "not instructor or Administrador")
	}

	for i := range curso.Materiales {
		m := &curso.Materiales[i]
		if m.ID != materialID {
			continue
		}
		if ref, ok := storage.ExtractObjectPath(m.URL); ok {
			if err := s.store.Remove(ctx, ref.Bucket, ref.Path); err != nil {
				s.logger.Warn("failed to remove material object", "material_id", materialID, "error", err)
			}
		}
		return s.repo.Material().Delete(ctx, materialID)
	}
	return fmt.Errorf("material %s not found in course %s", materialID, cursoID)
}

// ===== HELPERS =====

func (s *courseService) uploadCourseAsset(ctx context.Context, file *UploadFile) (url, path string, err error) {
	if err := storage.CursosPolicy.Allows(file.ContentType, file.Size); err != nil {
		return "", "", err
	}

	path = storage.NewObjectName(file.Filename)
	err = s.store.Upload(ctx, storage.BucketCursos, path, file.Reader, file.Size, storage.UploadOptions{
		ContentType:  file.ContentType,
		CacheControl: "3600",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s: %w", file.Filename, err)
	}
	return s.store.PublicURL(storage.BucketCursos, path), path, nil
}

func (s *courseService) toResponse(curso *models.Curso, actor *models.AppUser) *CourseResponse {
	editable := canEditCourse(curso, actor)
	return &CourseResponse{Curso: curso, CanEdit: editable, CanDelete: editable}
}

func canManageCourses(actor *models.AppUser) bool {
	return actor != nil && (actor.Role == models.RoleBarbero || actor.Role == models.RoleAdministrador)
}

func canEditCourse(curso *models.Curso, actor *models.AppUser) bool {
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleAdministrador {
		return true
	}
	return actor.Role == models.RoleBarbero && curso.InstructorID == actor.ID
}
