package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

func (l nopLogger) With(...any) utils.Logger { return l }

type fakeCourseRepo struct {
	courses     map[string]*models.Curso
	created     []*models.Curso
	deleted     []string
	lastFilters repositories.CourseFilters
	createErr   error
	updateErr   error
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*models.Curso, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeCourseRepo) List(_ context.Context, filters repositories.CourseFilters) ([]*models.Curso, int64, error) {
	f.lastFilters = filters
	var out []*models.Curso
	for _, c := range f.courses {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCourseRepo) Create(_ context.Context, curso *models.Curso) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, curso)
	f.courses[curso.ID] = curso
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, curso *models.Curso) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.courses[curso.ID] = curso
	return nil
}

func (f *fakeCourseRepo) SetPublicado(_ context.Context, id string, publicado bool) error {
	c, ok := f.courses[id]
	if !ok {
		return repositories.ErrCourseNotFound
	}
	c.Publicado = publicado
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(f.courses, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMaterialRepo struct {
	created []*models.Material
	deleted []string
}

func (f *fakeMaterialRepo) ListByCourse(context.Context, string) ([]*models.Material, error) {
	return nil, nil
}

func (f *fakeMaterialRepo) Create(_ context.Context, m *models.Material) error {
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMaterialRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRepo struct {
	profile  *fakeProfileRepo
	course   *fakeCourseRepo
	material *fakeMaterialRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profile:  &fakeProfileRepo{profiles: map[string]*models.Profile{}},
		course:   &fakeCourseRepo{courses: map[string]*models.Curso{}},
		material: &fakeMaterialRepo{},
	}
}

func (f *fakeRepo) Profile() repositories.ProfileRepository   { return f.profile }
func (f *fakeRepo) Course() repositories.CourseRepository     { return f.course }
func (f *fakeRepo) Material() repositories.MaterialRepository { return f.material }

type fakeStore struct {
	uploaded []storage.ObjectRef
	removed  []storage.ObjectRef
	failOn   int // fail the Nth upload, 1-based; 0 never fails
}

func (f *fakeStore) ListBuckets(context.Context) ([]string, error) { return nil, nil }

func (f *fakeStore) EnsureBucket(context.Context, string, storage.BucketPolicy) (bool, error) {
	return false, nil
}

func (f *fakeStore) Upload(_ context.Context, bucket, path string, _ io.Reader, _ int64, _ storage.UploadOptions) error {
	if f.failOn > 0 && len(f.uploaded)+1 == f.failOn {
		return errors.New("storage unavailable")
	}
	f.uploaded = append(f.uploaded, storage.ObjectRef{Bucket: bucket, Path: path})
	return nil
}

func (f *fakeStore) PublicURL(bucket, path string) string {
	return storage.FormatPublicURL("http://store.test", bucket, path)
}

func (f *fakeStore) Remove(_ context.Context, bucket string, paths ...string) error {
	for _, p := range paths {
		f.removed = append(f.removed, storage.ObjectRef{Bucket: bucket, Path: p})
	}
	return nil
}

func removedPaths(f *fakeStore) []string {
	out := make([]string, 0, len(f.removed))
	for _, r := range f.removed {
		out = append(out, r.Path)
	}
	return out
}

func newTestCourseService(repo *fakeRepo, store *fakeStore) CourseService {
	return NewCourseService(repo, store, nil, nopLogger{}, validator.NewValidator())
}

func barbero(id string) *models.AppUser {
	return &models.AppUser{ID: id, Role: models.RoleBarbero, Habilitado: true}
}

func estudiante(id string) *models.AppUser {
	return &models.AppUser{ID: id, Role: models.RoleEstudiante, Habilitado: true}
}

func admin(id string) *models.AppUser {
	return &models.AppUser{ID: id, Role: models.RoleAdministrador, Habilitado: true}
}

func testAssets() *CourseAssets {
	return &CourseAssets{
		Video: &UploadFile{
			Reader:      strings.NewReader("video-bytes"),
			Size:        11,
			Filename:    "intro.mp4",
			ContentType: "video/mp4",
		},
		Portada: &UploadFile{
			Reader:      strings.NewReader("img-bytes"),
			Size:        9,
			Filename:    "portada.png",
			ContentType: "image/png",
		},
	}
}

func TestCourseService_Create(t *testing.T) {
	t.Run("uploads assets then inserts row", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		resp, err := svc.Create(context.Background(), &CreateCourseRequest{Titulo: "Fade clasico"}, testAssets(), barbero("b1"))
		require.NoError(t, err)

		require.Len(t, repo.course.created, 1)
		curso := repo.course.created[0]
		assert.Equal(t, "b1", curso.InstructorID)
		require.NotNil(t, curso.VideoURL)
		require.NotNil(t, curso.ImagenPortadaURL)
		assert.Len(t, store.uploaded, 2)
		for _, ref := range store.uploaded {
			assert.Equal(t, storage.BucketCursos, ref.Bucket)
		}
		assert.True(t, resp.CanEdit)
		assert.Empty(t, store.removed)
	})

	t.Run("insert failure removes uploaded objects", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.createErr = errors.New("duplicate key")
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		_, err := svc.Create(context.Background(), &CreateCourseRequest{Titulo: "Fade clasico"}, testAssets(), barbero("b1"))
		require.Error(t, err)

		require.Len(t, store.uploaded, 2)
		var uploaded []string
		for _, ref := range store.uploaded {
			uploaded = append(uploaded, ref.Path)
		}
		assert.ElementsMatch(t, uploaded, removedPaths(store))
		assert.Empty(t, repo.course.created)
	})

	t.Run("upload failure cleans up earlier uploads", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{failOn: 2}
		svc := newTestCourseService(repo, store)

		_, err := svc.Create(context.Background(), &CreateCourseRequest{Titulo: "Fade clasico"}, testAssets(), barbero("b1"))
		require.Error(t, err)

		require.Len(t, store.uploaded, 1)
		assert.Equal(t, []string{store.uploaded[0].Path}, removedPaths(store))
		assert.Empty(t, repo.course.created)
	})

	t.Run("rejects content type outside bucket policy", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		assets := &CourseAssets{Video: &UploadFile{
			Reader:      strings.NewReader("exe"),
			Size:        3,
			Filename:    "malware.exe",
			ContentType: "application/x-msdownload",
		}}
		_, err := svc.Create(context.Background(), &CreateCourseRequest{Titulo: "Fade clasico"}, assets, barbero("b1"))
		require.Error(t, err)
		assert.Empty(t, store.uploaded)
	})

	t.Run("students cannot create courses", func(t *testing.T) {
		repo := newFakeRepo()
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		_, err := svc.Create(context.Background(), &CreateCourseRequest{Titulo: "Fade clasico"}, nil, estudiante("e1"))
		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
		assert.Empty(t, store.uploaded)
		assert.Empty(t, repo.course.created)
	})
}

func TestCourseService_GetByID(t *testing.T) {
	repo := newFakeRepo()
	repo.course.courses["c1"] = &models.Curso{ID: "c1", Titulo: "Borrador", InstructorID: "b1", Publicado: false}
	svc := newTestCourseService(repo, &fakeStore{})

	t.Run("draft is hidden from students", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "c1", estudiante("e1"))
		assert.ErrorIs(t, err, repositories.ErrCourseNotFound)
	})

	t.Run("draft is visible to its instructor", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), "c1", barbero("b1"))
		require.NoError(t, err)
		assert.True(t, resp.CanEdit)
	})

	t.Run("draft is visible to admins", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), "c1", admin("a1"))
		require.NoError(t, err)
		assert.True(t, resp.CanDelete)
	})
}

func TestCourseService_ListVisibility(t *testing.T) {
	t.Run("anonymous callers are forced onto the published catalog", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})

		_, err := svc.List(context.Background(), repositories.CourseFilters{}, nil)
		require.NoError(t, err)
		require.NotNil(t, repo.course.lastFilters.Publicado)
		assert.True(t, *repo.course.lastFilters.Publicado)
	})

	t.Run("students are forced onto the published catalog", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})

		_, err := svc.List(context.Background(), repositories.CourseFilters{}, estudiante("e1"))
		require.NoError(t, err)
		require.NotNil(t, repo.course.lastFilters.Publicado)
		assert.True(t, *repo.course.lastFilters.Publicado)
	})

	t.Run("instructors see their own drafts", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})

		own := "b1"
		_, err := svc.List(context.Background(), repositories.CourseFilters{InstructorID: &own}, barbero("b1"))
		require.NoError(t, err)
		assert.Nil(t, repo.course.lastFilters.Publicado)
	})

	t.Run("instructors browsing others see only published", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})

		other := "b2"
		_, err := svc.List(context.Background(), repositories.CourseFilters{InstructorID: &other}, barbero("b1"))
		require.NoError(t, err)
		require.NotNil(t, repo.course.lastFilters.Publicado)
		assert.True(t, *repo.course.lastFilters.Publicado)
	})

	t.Run("admins see everything", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})

		_, err := svc.List(context.Background(), repositories.CourseFilters{}, admin("a1"))
		require.NoError(t, err)
		assert.Nil(t, repo.course.lastFilters.Publicado)
	})
}

func TestCourseService_Update(t *testing.T) {
	oldVideo := storage.FormatPublicURL("http://store.test", storage.BucketCursos, "old_video.mp4")

	t.Run("replaced asset is removed after the row update", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{ID: "c1", Titulo: "Fade", InstructorID: "b1", VideoURL: &oldVideo}
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		assets := &CourseAssets{Video: &UploadFile{
			Reader:      strings.NewReader("new-bytes"),
			Size:        9,
			Filename:    "v2.mp4",
			ContentType: "video/mp4",
		}}
		resp, err := svc.Update(context.Background(), "c1", &UpdateCourseRequest{}, assets, barbero("b1"))
		require.NoError(t, err)

		require.Len(t, store.uploaded, 1)
		assert.Equal(t, []string{"old_video.mp4"}, removedPaths(store))
		require.NotNil(t, resp.VideoURL)
		assert.Contains(t, *resp.VideoURL, store.uploaded[0].Path)
	})

	t.Run("row update failure removes the new object and keeps the old", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{ID: "c1", Titulo: "Fade", InstructorID: "b1", VideoURL: &oldVideo}
		repo.course.updateErr = errors.New("connection reset")
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		assets := &CourseAssets{Video: &UploadFile{
			Reader:      strings.NewReader("new-bytes"),
			Size:        9,
			Filename:    "v2.mp4",
			ContentType: "video/mp4",
		}}
		_, err := svc.Update(context.Background(), "c1", &UpdateCourseRequest{}, assets, barbero("b1"))
		require.Error(t, err)

		require.Len(t, store.uploaded, 1)
		assert.Equal(t, []string{store.uploaded[0].Path}, removedPaths(store))
	})

	t.Run("other instructors cannot update", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{ID: "c1", Titulo: "Fade", InstructorID: "b1"}
		svc := newTestCourseService(repo, &fakeStore{})

		titulo := "Robado"
		_, err := svc.Update(context.Background(), "c1", &UpdateCourseRequest{Titulo: &titulo}, nil, barbero("b2"))
		var permErr *PermissionError
		require.ErrorAs(t, err, &permErr)
	})
}

func TestCourseService_Delete(t *testing.T) {
	t.Run("removes referenced objects grouped by bucket", func(t *testing.T) {
		portada := storage.FormatPublicURL("http://store.test", storage.BucketCursos, "portada.png")
		video := storage.FormatPublicURL("http://store.test", storage.BucketVideos, "legacy.mp4")
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{
			ID:               "c1",
			InstructorID:     "b1",
			ImagenPortadaURL: &portada,
			VideoURL:         &video,
			Materiales: []models.Material{
				{ID: "m1", CursoID: "c1", URL: storage.FormatPublicURL("http://store.test", storage.BucketCursos, "guia.pdf")},
			},
		}
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		require.NoError(t, svc.Delete(context.Background(), "c1", barbero("b1")))

		assert.Equal(t, []string{"c1"}, repo.course.deleted)
		assert.ElementsMatch(t, []storage.ObjectRef{
			{Bucket: storage.BucketCursos, Path: "portada.png"},
			{Bucket: storage.BucketCursos, Path: "guia.pdf"},
			{Bucket: storage.BucketVideos, Path: "legacy.mp4"},
		}, store.removed)
	})

	t.Run("other instructors cannot delete", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{ID: "c1", InstructorID: "b1"}
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		var permErr *PermissionError
		require.ErrorAs(t, svc.Delete(context.Background(), "c1", barbero("b2")), &permErr)
		assert.Empty(t, repo.course.deleted)
		assert.Empty(t, store.removed)
	})

	t.Run("missing course", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestCourseService(repo, &fakeStore{})
		assert.ErrorIs(t, svc.Delete(context.Background(), "nope", admin("a1")), repositories.ErrCourseNotFound)
	})
}

func TestCourseService_Materials(t *testing.T) {
	newCourse := func() *fakeRepo {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{ID: "c1", InstructorID: "b1"}
		return repo
	}

	t.Run("add material", func(t *testing.T) {
		repo := newCourse()
		svc := newTestCourseService(repo, &fakeStore{})

		m, err := svc.AddMaterial(context.Background(), "c1", &AddMaterialRequest{
			Titulo: "Guia de tijeras",
			Tipo:   "pdf",
			URL:    "http://store.test/storage/v1/object/public/cursos/guia.pdf",
		}, barbero("b1"))
		require.NoError(t, err)
		assert.Equal(t, "c1", m.CursoID)
		assert.Equal(t, models.MaterialPDF, m.Tipo)
		require.Len(t, repo.material.created, 1)
	})

	t.Run("invalid tipo is rejected", func(t *testing.T) {
		repo := newCourse()
		svc := newTestCourseService(repo, &fakeStore{})

		_, err := svc.AddMaterial(context.Background(), "c1", &AddMaterialRequest{
			Titulo: "Guia",
			Tipo:   "docx",
			URL:    "http://store.test/x",
		}, barbero("b1"))
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Empty(t, repo.material.created)
	})

	t.Run("remove material deletes its stored object", func(t *testing.T) {
		repo := newFakeRepo()
		repo.course.courses["c1"] = &models.Curso{
			ID:           "c1",
			InstructorID: "b1",
			Materiales: []models.Material{
				{ID: "m1", CursoID: "c1", URL: storage.FormatPublicURL("http://store.test", storage.BucketCursos, "guia.pdf")},
			},
		}
		store := &fakeStore{}
		svc := newTestCourseService(repo, store)

		require.NoError(t, svc.RemoveMaterial(context.Background(), "c1", "m1", barbero("b1")))
		assert.Equal(t, []string{"m1"}, repo.material.deleted)
		assert.Equal(t, []storage.ObjectRef{{Bucket: storage.BucketCursos, Path: "guia.pdf"}}, store.removed)
	})

	t.Run("remove unknown material", func(t *testing.T) {
		repo := newCourse()
		svc := newTestCourseService(repo, &fakeStore{})

		err := svc.RemoveMaterial(context.Background(), "c1", "ghost", barbero("b1"))
		require.Error(t, err)
		assert.Equal(t, fmt.Sprintf("material %s not found in course %s", "ghost", "c1"), err.Error())
	})
}

func TestCourseService_SetPublicado(t *testing.T) {
	repo := newFakeRepo()
	repo.course.courses["c1"] = &models.Curso{ID: "c1", InstructorID: "b1"}
	svc := newTestCourseService(repo, &fakeStore{})

	require.NoError(t, svc.SetPublicado(context.Background(), "c1", true, barbero("b1")))
	assert.True(t, repo.course.courses["c1"].Publicado)

	var permErr *PermissionError
	require.ErrorAs(t, svc.SetPublicado(context.Background(), "c1", false, barbero("b2")), &permErr)
	assert.True(t, repo.course.courses["c1"].Publicado)
}
