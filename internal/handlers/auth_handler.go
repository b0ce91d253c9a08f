package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/auth"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	manager   *auth.Manager
	store     *auth.Store
	validator *validator.Validator
}

func NewAuthHandler(manager *auth.Manager, store *auth.Store, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		manager:     manager,
		store:       store,
		validator:   validator,
	}
}

// Login signs in with email and password. The response carries the path the
// client should land on, mirroring the post-login redirect rules.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	redirect, err := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"redirect": redirect}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req validator.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	redirect, err := h.manager.Register(c.Request.Context(), req.Nombre, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Account created, awaiting approval",
		Data:    gin.H{"redirect": redirect},
	})
}

// LoginWithGoogle starts the federated flow and returns the provider URL.
func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	authURL, err := h.manager.LoginWithGoogle(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback completes the federated flow.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.Redirect(http.StatusFound, auth.PathAuthError)
		return
	}

	if err := h.manager.CompleteOAuthCallback(c.Request.Context(), code, state); err != nil {
		h.LogRequest(c, "oauth callback failed", "error", err)
		c.Redirect(http.StatusFound, auth.PathAuthError)
		return
	}

	c.Redirect(http.StatusFound, auth.PathDashboard)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	redirect := h.manager.Logout(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"redirect": redirect}})
}

// Session exposes the current session snapshot for clients that poll while
// the listener resolves.
func (h *AuthHandler) Session(c *gin.Context) {
	s := h.store.Current()
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{
		"loading": s.Loading,
		"user":    s.User,
	}})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req validator.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	// Always answer 200 so the endpoint cannot be used to enumerate accounts.
	if err := h.manager.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.LogRequest(c, "password reset request failed", "error", err)
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "If the account exists, a reset email was sent"})
}

func (h *AuthHandler) CompletePasswordReset(c *gin.Context) {
	var req validator.PasswordResetCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	if err := h.manager.CompletePasswordReset(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password updated"})
}
