package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ElStudioBarberia/course-service/internal/models"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.Role
	}{
		{name: "empty defaults to student", raw: "", want: models.RoleEstudiante},
		{name: "exact match", raw: "Barbero", want: models.RoleBarbero},
		{name: "lowercase", raw: "barbero", want: models.RoleBarbero},
		{name: "uppercase", raw: "ADMINISTRADOR", want: models.RoleAdministrador},
		{name: "mixed case", raw: "eStUdIaNtE", want: models.RoleEstudiante},
		{name: "unknown defaults to student", raw: "Profesor", want: models.RoleEstudiante},
		{name: "whitespace is not trimmed", raw: " Barbero", want: models.RoleEstudiante},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.raw))
		})
	}
}

func TestResolveRole_Idempotent(t *testing.T) {
	for _, raw := range []string{"", "barbero", "ADMINISTRADOR", "Estudiante", "algo raro"} {
		once := ResolveRole(raw)
		assert.Equal(t, once, ResolveRole(string(once)), "normalizing %q twice changed the result", raw)
	}
}

func TestBuildAppUser_Fallbacks(t *testing.T) {
	session := sessionFor("p1", "ana@example.com", map[string]string{
		"full_name":  "Ana Torres",
		"avatar_url": "https://lh3.example.com/ana.jpg",
	})

	t.Run("profile values win", func(t *testing.T) {
		foto := "https://cdn.example.com/foto.png"
		user := BuildAppUser(session, &models.Profile{
			ID:         "p1",
			Nombre:     "Ana T.",
			Rol:        "barbero",
			Habilitado: true,
			FotoPerfil: &foto,
		})
		assert.Equal(t, "Ana T.", user.Nombre)
		assert.Equal(t, foto, user.FotoPerfil)
		assert.Equal(t, models.RoleBarbero, user.Role)
		assert.True(t, user.Habilitado)
		assert.Equal(t, "ana@example.com", user.Email)
	})

	t.Run("metadata fills gaps", func(t *testing.T) {
		user := BuildAppUser(session, &models.Profile{ID: "p1"})
		assert.Equal(t, "Ana Torres", user.Nombre)
		assert.Equal(t, "https://lh3.example.com/ana.jpg", user.FotoPerfil)
		assert.Equal(t, models.RoleEstudiante, user.Role)
		assert.False(t, user.FechaRegistro.IsZero())
	})

	t.Run("generic name when nothing available", func(t *testing.T) {
		bare := sessionFor("p2", "x@example.com", nil)
		user := BuildAppUser(bare, &models.Profile{ID: "p2"})
		assert.Equal(t, "Usuario", user.Nombre)
		assert.Empty(t, user.FotoPerfil)
	})
}

func TestRedirectFor(t *testing.T) {
	tests := []struct {
		name string
		user *models.AppUser
		want string
	}{
		{name: "enabled student", user: &models.AppUser{Role: models.RoleEstudiante, Habilitado: true}, want: PathDashboard},
		{name: "pending student", user: &models.AppUser{Role: models.RoleEstudiante}, want: PathPendingApproval},
		{name: "instructor without approval", user: &models.AppUser{Role: models.RoleBarbero}, want: PathDashboard},
		{name: "enabled admin", user: &models.AppUser{Role: models.RoleAdministrador, Habilitado: true}, want: PathDashboard},
		// Must agree with Evaluate, which holds a disabled admin at pending.
		{name: "admin without approval", user: &models.AppUser{Role: models.RoleAdministrador}, want: PathPendingApproval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedirectFor(tt.user))
		})
	}
}
