package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/services"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse accepts a multipart form: metadata fields plus optional
// portada, video and material files, all stored before the row is created.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	h.LogRequest(c, "creating course")

	req := services.CreateCourseRequest{
		Titulo:      c.PostForm("titulo"),
		Descripcion: c.PostForm("descripcion"),
		Categorias:  splitCategorias(c.PostForm("categorias")),
		Publicado:   c.PostForm("publicado") == "true",
	}

	assets, closeAssets, err := h.collectAssets(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid file upload", Details: err.Error()})
		return
	}
	defer closeAssets()

	course, err := h.courseService.Create(c.Request.Context(), &req, assets, CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetByID(c.Request.Context(), c.Param("id"), CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: course})
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Limit:  parseQueryInt(c, "size", 20),
		Offset: 0,
	}
	if page := parseQueryInt(c, "page", 1); page > 1 {
		filters.Offset = (page - 1) * filters.Limit
	}
	if instructor := c.Query("instructor_id"); instructor != "" {
		filters.InstructorID = &instructor
	}
	if pub := c.Query("publicado"); pub != "" {
		v := pub == "true"
		filters.Publicado = &v
	}

	courses, err := h.courseService.List(c.Request.Context(), filters, CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: courses})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	h.LogRequest(c, "updating course", "curso_id", c.Param("id"))

	var req services.UpdateCourseRequest
	if v, ok := c.GetPostForm("titulo"); ok {
		req.Titulo = &v
	}
	if v, ok := c.GetPostForm("descripcion"); ok {
		req.Descripcion = &v
	}
	if v, ok := c.GetPostForm("categorias"); ok {
		req.Categorias = splitCategorias(v)
	}
	if v, ok := c.GetPostForm("publicado"); ok {
		b := v == "true"
		req.Publicado = &b
	}

	assets, closeAssets, err := h.collectAssets(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid file upload", Details: err.Error()})
		return
	}
	defer closeAssets()

	course, err := h.courseService.Update(c.Request.Context(), c.Param("id"), &req, assets, CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: course})
}

func (h *CourseHandler) PublishCourse(c *gin.Context) {
	h.setPublicado(c, true)
}

func (h *CourseHandler) UnpublishCourse(c *gin.Context) {
	h.setPublicado(c, false)
}

func (h *CourseHandler) setPublicado(c *gin.Context, publicado bool) {
	if err := h.courseService.SetPublicado(c.Request.Context(), c.Param("id"), publicado, CurrentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Course visibility updated"})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	h.LogRequest(c, "deleting course", "curso_id", c.Param("id"))

	if err := h.courseService.Delete(c.Request.Context(), c.Param("id"), CurrentUser(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}

func (h *CourseHandler) AddMaterial(c *gin.Context) {
	var req services.AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	material, err := h.courseService.AddMaterial(c.Request.Context(), c.Param("id"), &req, CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Data: material})
}

func (h *CourseHandler) RemoveMaterial(c *gin.Context) {
	err := h.courseService.RemoveMaterial(c.Request.Context(), c.Param("id"), c.Param("material_id"), CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Material removed"})
}

// collectAssets opens the optional multipart files. The returned closer must
// run after the service call so streams stay readable during upload.
func (h *CourseHandler) collectAssets(c *gin.Context) (*services.CourseAssets, func(), error) {
	assets := &services.CourseAssets{}
	var closers []func()
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	for _, part := range []struct {
		field string
		dest  **services.UploadFile
	}{
		{"video", &assets.Video},
		{"material", &assets.Material},
		{"portada", &assets.Portada},
	} {
		header, err := c.FormFile(part.field)
		if err != nil {
			continue // field absent
		}
		file, closer, err := openUploadFile(header)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, closer)
		*part.dest = file
	}

	return assets, closeAll, nil
}

func openUploadFile(header *multipart.FileHeader) (*services.UploadFile, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.UploadFile{
		Reader:      f,
		Size:        header.Size,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { f.Close() }, nil
}

func splitCategorias(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
