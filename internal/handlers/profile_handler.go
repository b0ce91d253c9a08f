package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/auth"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/services"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
	authManager    *auth.Manager
}

func NewProfileHandler(profileService services.ProfileService, authManager *auth.Manager, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
		authManager:    authManager,
	}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Data: CurrentUser(c)})
}

// UpdateMe persists the change and then patches the in-memory session so the
// caller sees the update without waiting for a fresh resolution.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	user := CurrentUser(c)
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.authManager.UpdateUserProfile(auth.ProfilePatch{
		Nombre:     req.Nombre,
		FotoPerfil: req.FotoPerfil,
	})

	c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

func (h *ProfileHandler) SetPhoto(c *gin.Context) {
	header, err := c.FormFile("foto")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing foto file"})
		return
	}
	file, closer, err := openUploadFile(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid file upload", Details: err.Error()})
		return
	}
	defer closer()

	user := CurrentUser(c)
	profile, err := h.profileService.SetProfilePhoto(c.Request.Context(), user.ID, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.authManager.UpdateUserProfile(auth.ProfilePatch{FotoPerfil: profile.FotoPerfil})

	c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

// GetProfile returns another user's public profile. Students may only look
// at enabled instructors.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	actor := CurrentUser(c)
	if actor != nil && actor.Role == models.RoleEstudiante && actor.ID != profile.ID {
		if auth.ResolveRole(profile.Rol) != models.RoleBarbero {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Profile not found"})
			return
		}
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}
