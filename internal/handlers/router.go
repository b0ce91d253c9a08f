package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/auth"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/services"
	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	courseHandler  *CourseHandler
	profileHandler *ProfileHandler
	adminHandler   *AdminHandler
	uploadHandler  *UploadHandler
	guard          *GuardMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authManager *auth.Manager,
	store *auth.Store,
	storageClient storage.Client,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(authManager, store, validator, logger),
		courseHandler:  NewCourseHandler(serviceManager.Course(), logger),
		profileHandler: NewProfileHandler(serviceManager.Profile(), authManager, logger),
		adminHandler:   NewAdminHandler(serviceManager.Admin(), validator, logger),
		uploadHandler:  NewUploadHandler(storageClient, logger),
		guard:          NewGuardMiddleware(store),
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	// Credential operations never pass the guard: they are how a session
	// comes to exist in the first place.
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/logout", hm.authHandler.Logout)
		authRoutes.GET("/google", hm.authHandler.LoginWithGoogle)
		authRoutes.GET("/callback", hm.authHandler.OAuthCallback)
		authRoutes.GET("/session", hm.authHandler.Session)
		authRoutes.POST("/reset-password", hm.authHandler.RequestPasswordReset)
		authRoutes.POST("/reset-password/confirm", hm.authHandler.CompletePasswordReset)
	}

	v1 := router.Group("/api/v1")
	{
		// Published catalog is browsable without passing the guard.
		v1.GET("/cursos", hm.guard.Identify(), hm.courseHandler.ListCourses)

		guarded := v1.Group("")
		guarded.Use(hm.guard.Guard())
		{
			cursos := guarded.Group("/cursos")
			{
				cursos.GET("/:id", hm.courseHandler.GetCourse)

				// Create/modify courses: instructors and admins only
				manage := hm.guard.RequireRole(models.RoleBarbero, models.RoleAdministrador)
				cursos.POST("", manage, hm.courseHandler.CreateCourse)
				cursos.PUT("/:id", manage, hm.courseHandler.UpdateCourse)
				cursos.DELETE("/:id", manage, hm.courseHandler.DeleteCourse)
				cursos.POST("/:id/publish", manage, hm.courseHandler.PublishCourse)
				cursos.POST("/:id/unpublish", manage, hm.courseHandler.UnpublishCourse)
				cursos.POST("/:id/materiales", manage, hm.courseHandler.AddMaterial)
				cursos.DELETE("/:id/materiales/:material_id", manage, hm.courseHandler.RemoveMaterial)
			}

			me := guarded.Group("/me")
			{
				me.GET("", hm.profileHandler.GetMe)
				me.PUT("", hm.profileHandler.UpdateMe)
				me.POST("/foto", hm.profileHandler.SetPhoto)
			}

			guarded.GET("/profiles/:id", hm.profileHandler.GetProfile)

			guarded.POST("/uploads/:bucket",
				hm.guard.RequireRole(models.RoleBarbero, models.RoleAdministrador),
				hm.uploadHandler.Upload)

			admin := guarded.Group("/admin")
			admin.Use(hm.guard.RequireRole(models.RoleAdministrador))
			{
				admin.GET("/users", hm.adminHandler.ListUsers)
				admin.PUT("/users/:id/habilitado", hm.adminHandler.SetHabilitado)
				admin.PUT("/users/:id/rol", hm.adminHandler.SetRole)
				admin.GET("/users/export", hm.adminHandler.ExportUsers)
			}
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "course-service",
	})
}
