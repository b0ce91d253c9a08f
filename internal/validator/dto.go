package validator

// LoginRequest represents the request structure for password sign-in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest represents the request structure for account registration
type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required,profile_nombre"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// PasswordResetRequest starts a password recovery flow
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetCompleteRequest finishes a password recovery flow
type PasswordResetCompleteRequest struct {
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ProfileUpdateRequest represents a partial profile update
type ProfileUpdateRequest struct {
	Nombre     *string `json:"nombre" validate:"omitempty,profile_nombre"`
	FotoPerfil *string `json:"foto_perfil" validate:"omitempty,url"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Titulo      string   `json:"titulo" validate:"required,curso_titulo"`
	Descripcion string   `json:"descripcion" validate:"omitempty,curso_descripcion"`
	Categorias  []string `json:"categorias" validate:"omitempty,dive,required"`
	Publicado   bool     `json:"publicado"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Titulo      *string  `json:"titulo" validate:"omitempty,curso_titulo"`
	Descripcion *string  `json:"descripcion" validate:"omitempty,curso_descripcion"`
	Categorias  []string `json:"categorias" validate:"omitempty,dive,required"`
	Publicado   *bool    `json:"publicado"`
}

// MaterialCreateRequest attaches a material to an existing course
type MaterialCreateRequest struct {
	Titulo string `json:"titulo" validate:"required,curso_titulo"`
	Tipo   string `json:"tipo" validate:"required,material_tipo"`
	URL    string `json:"url" validate:"required,url"`
}

// AdminSetRoleRequest changes a user's role
type AdminSetRoleRequest struct {
	Rol string `json:"rol" validate:"required,valid_rol"`
}

// AdminSetHabilitadoRequest flips a user's enablement flag
type AdminSetHabilitadoRequest struct {
	Habilitado *bool `json:"habilitado" validate:"required"`
}
