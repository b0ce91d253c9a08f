package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

func newTestProfileService(repo *fakeRepo, store *fakeStore) ProfileService {
	return NewProfileService(repo, store, nopLogger{}, validator.NewValidator())
}

func photoUpload() *UploadFile {
	return &UploadFile{
		Reader:      strings.NewReader("png-bytes"),
		Size:        9,
		Filename:    "selfie.PNG",
		ContentType: "image/png",
	}
}

func TestProfileService_UpdateProfile(t *testing.T) {
	t.Run("partial update only touches provided fields", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1", Nombre: "Ana", Rol: "Estudiante"}
		svc := newTestProfileService(repo, &fakeStore{})

		nombre := "Ana Maria"
		p, err := svc.UpdateProfile(context.Background(), "p1", &UpdateProfileRequest{Nombre: &nombre})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", p.Nombre)
		require.Len(t, repo.profile.updates, 1)
		assert.Equal(t, map[string]any{"nombre": "Ana Maria"}, repo.profile.updates[0])
	})

	t.Run("empty update skips the write", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1", Nombre: "Ana"}
		svc := newTestProfileService(repo, &fakeStore{})

		p, err := svc.UpdateProfile(context.Background(), "p1", &UpdateProfileRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Ana", p.Nombre)
		assert.Empty(t, repo.profile.updates)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestProfileService(repo, &fakeStore{})

		blank := "  "
		_, err := svc.UpdateProfile(context.Background(), "p1", &UpdateProfileRequest{Nombre: &blank})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
	})
}

func TestProfileService_SetProfilePhoto(t *testing.T) {
	t.Run("uploads and replaces a stored photo", func(t *testing.T) {
		old := storage.FormatPublicURL("http://store.test", storage.BucketProfilePictures, "old.png")
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1", FotoPerfil: &old}
		store := &fakeStore{}
		svc := newTestProfileService(repo, store)

		p, err := svc.SetProfilePhoto(context.Background(), "p1", photoUpload())
		require.NoError(t, err)

		require.Len(t, store.uploaded, 1)
		assert.Equal(t, storage.BucketProfilePictures, store.uploaded[0].Bucket)
		assert.True(t, strings.HasSuffix(store.uploaded[0].Path, ".png"))
		require.NotNil(t, p.FotoPerfil)
		assert.Contains(t, *p.FotoPerfil, store.uploaded[0].Path)
		assert.Equal(t, []storage.ObjectRef{{Bucket: storage.BucketProfilePictures, Path: "old.png"}}, store.removed)
	})

	t.Run("external avatars are left alone", func(t *testing.T) {
		avatar := "https://i.pravatar.cc/150?u=p1"
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1", FotoPerfil: &avatar}
		store := &fakeStore{}
		svc := newTestProfileService(repo, store)

		_, err := svc.SetProfilePhoto(context.Background(), "p1", photoUpload())
		require.NoError(t, err)
		assert.Empty(t, store.removed)
	})

	t.Run("row update failure removes the uploaded object", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1"}
		repo.profile.updateFieldsErr = errors.New("connection reset")
		store := &fakeStore{}
		svc := newTestProfileService(repo, store)

		_, err := svc.SetProfilePhoto(context.Background(), "p1", photoUpload())
		require.Error(t, err)
		require.Len(t, store.uploaded, 1)
		assert.Equal(t, []string{store.uploaded[0].Path}, removedPaths(store))
	})

	t.Run("oversized uploads are rejected before anything is stored", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1"}
		store := &fakeStore{}
		svc := newTestProfileService(repo, store)

		big := &UploadFile{
			Reader:      strings.NewReader("x"),
			Size:        6 * 1024 * 1024,
			Filename:    "huge.png",
			ContentType: "image/png",
		}
		_, err := svc.SetProfilePhoto(context.Background(), "p1", big)
		require.Error(t, err)
		assert.Empty(t, store.uploaded)
	})

	t.Run("non-image content type is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profile.profiles["p1"] = &models.Profile{ID: "p1"}
		store := &fakeStore{}
		svc := newTestProfileService(repo, store)

		pdf := &UploadFile{
			Reader:      strings.NewReader("pdf"),
			Size:        3,
			Filename:    "cv.pdf",
			ContentType: "application/pdf",
		}
		_, err := svc.SetProfilePhoto(context.Background(), "p1", pdf)
		require.Error(t, err)
		assert.Empty(t, store.uploaded)
	})
}
