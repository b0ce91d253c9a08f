package auth

import (
	"strings"
	"time"

	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/models"
)

var validRoles = []models.Role{
	models.RoleEstudiante,
	models.RoleBarbero,
	models.RoleAdministrador,
}

// ResolveRole normalizes a free-text role label into the closed role set:
// lowercase, capitalize the first letter, check membership, default to
// Estudiante. Idempotent.
func ResolveRole(raw string) models.Role {
	if raw == "" {
		return models.RoleEstudiante
	}
	lowered := strings.ToLower(raw)
	normalized := models.Role(strings.ToUpper(lowered[:1]) + lowered[1:])
	for _, r := range validRoles {
		if normalized == r {
			return normalized
		}
	}
	return models.RoleEstudiante
}

// BuildAppUser merges a remote session's principal with its profile row into
// the UI-facing user. Photo falls back from the profile photo to the
// provider-supplied avatar.
func BuildAppUser(session *identity.Session, profile *models.Profile) *models.AppUser {
	principal := session.Principal

	nombre := profile.Nombre
	if nombre == "" {
		nombre = principal.Metadata["full_name"]
	}
	if nombre == "" {
		nombre = "Usuario"
	}

	foto := ""
	if profile.FotoPerfil != nil && *profile.FotoPerfil != "" {
		foto = *profile.FotoPerfil
	} else {
		foto = principal.Metadata["avatar_url"]
	}

	registro := profile.FechaRegistro
	if registro.IsZero() {
		registro = time.Now().UTC()
	}

	return &models.AppUser{
		ID:            principal.ID,
		Nombre:        nombre,
		Email:         principal.Email,
		Role:          ResolveRole(profile.Rol),
		Habilitado:    profile.Habilitado,
		FotoPerfil:    foto,
		FechaRegistro: registro,
		Principal:     principal,
	}
}

// RedirectFor computes the post-resolution destination. The rule mirrors
// Evaluate exactly: enabled users and instructors go to the dashboard,
// everyone else waits on the approval page. Any divergence between the two
// turns into a redirect loop, since the guard re-runs on the destination.
func RedirectFor(user *models.AppUser) string {
	if user.Habilitado || user.Role == models.RoleBarbero {
		return PathDashboard
	}
	return PathPendingApproval
}
