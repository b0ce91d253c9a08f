package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ElStudioBarberia/course-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateCategorias(req.Categorias)...)

	return errors
}

// ValidateCourseUpdate validates course update business rules
func (bv *BusinessValidator) ValidateCourseUpdate(req *CourseUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.Categorias != nil {
		errors = append(errors, bv.validateCategorias(req.Categorias)...)
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Role must belong to the closed set
	bv.validate.RegisterValidation("valid_rol", func(fl validator.FieldLevel) bool {
		rol := models.Role(fl.Field().String())
		validRoles := []models.Role{models.RoleEstudiante, models.RoleBarbero, models.RoleAdministrador}
		for _, vr := range validRoles {
			if rol == vr {
				return true
			}
		}
		return false
	})

	// Material type: video or pdf
	bv.validate.RegisterValidation("material_tipo", func(fl validator.FieldLevel) bool {
		tipo := models.MaterialTipo(fl.Field().String())
		return tipo == models.MaterialVideo || tipo == models.MaterialPDF
	})

	// Course title: 1-150 characters after trimming
	bv.validate.RegisterValidation("curso_titulo", func(fl validator.FieldLevel) bool {
		titulo := strings.TrimSpace(fl.Field().String())
		return len(titulo) >= 1 && len(titulo) <= 150
	})

	// Course description: up to 5000 characters
	bv.validate.RegisterValidation("curso_descripcion", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= 5000
	})

	// Display name: 1-100 characters after trimming
	bv.validate.RegisterValidation("profile_nombre", func(fl validator.FieldLevel) bool {
		nombre := strings.TrimSpace(fl.Field().String())
		return len(nombre) >= 1 && len(nombre) <= 100
	})
}

// validateCategorias checks category list constraints not expressible as tags
func (bv *BusinessValidator) validateCategorias(categorias []string) ValidationErrors {
	var errors ValidationErrors

	if len(categorias) > 10 {
		errors = append(errors, ValidationError{
			Field:   "categorias",
			Message: "cannot contain more than 10 entries",
			Value:   len(categorias),
			Rule:    "business_logic",
		})
	}

	seen := make(map[string]bool, len(categorias))
	for _, c := range categorias {
		key := strings.ToLower(strings.TrimSpace(c))
		if seen[key] {
			errors = append(errors, ValidationError{
				Field:   "categorias",
				Message: "contains duplicate entries",
				Value:   c,
				Rule:    "business_logic",
			})
			break
		}
		seen[key] = true
	}

	return errors
}

// getErrorMessage returns a human-readable message for a field error
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "valid_rol":
		return "must be one of Estudiante, Barbero, Administrador"
	case "material_tipo":
		return "must be video or pdf"
	case "curso_titulo":
		return "must be between 1 and 150 characters"
	case "curso_descripcion":
		return "cannot exceed 5000 characters"
	case "profile_nombre":
		return "must be between 1 and 100 characters"
	default:
		return fmt.Sprintf("failed validation rule %s", err.Tag())
	}
}
