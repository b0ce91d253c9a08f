package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/services"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.ProfileFilters{
		Query: c.Query("q"),
		Limit: parseQueryInt(c, "size", 20),
	}
	if page := parseQueryInt(c, "page", 1); page > 1 {
		filters.Offset = (page - 1) * filters.Limit
	}
	if rol := c.Query("rol"); rol != "" {
		filters.Rol = &rol
	}

	users, err := h.adminService.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: users})
}

// SetHabilitado flips the approval flag. The change takes effect on the
// affected user's next guarded request.
func (h *AdminHandler) SetHabilitado(c *gin.Context) {
	var req validator.AdminSetHabilitadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	h.LogRequest(c, "admin flipping habilitado", "profile_id", c.Param("id"), "habilitado", *req.Habilitado)

	profile, err := h.adminService.SetHabilitado(c.Request.Context(), c.Param("id"), *req.Habilitado)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	var req validator.AdminSetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	h.LogRequest(c, "admin changing role", "profile_id", c.Param("id"), "rol", req.Rol)

	profile, err := h.adminService.SetRole(c.Request.Context(), c.Param("id"), models.Role(req.Rol))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

// ExportUsers streams the roster as an xlsx download.
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	data, err := h.adminService.ExportUsersXLSX(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("usuarios_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
