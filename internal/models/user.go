package models

import (
	"time"
)

type Role string

const (
	RoleEstudiante    Role = "Estudiante"
	RoleBarbero       Role = "Barbero"
	RoleAdministrador Role = "Administrador"
)

// Profile is the application-specific row keyed to an identity-service
// principal. One row per principal; the id column IS the principal id.
type Profile struct {
	ID            string    `json:"id" gorm:"primaryKey;size:255"`
	Nombre        string    `json:"nombre" gorm:"size:100"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Rol           string    `json:"rol" gorm:"size:50"` // free text in storage, normalized at read time
	Habilitado    bool      `json:"habilitado" gorm:"default:false"`
	FotoPerfil    *string   `json:"foto_perfil" gorm:"size:500"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Principal is the identity service's authoritative account record as seen
// by this application. It is never mutated directly; credential operations
// go through the identity client.
type Principal struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Metadata  map[string]string `json:"metadata"` // provider-supplied (full_name, avatar_url, ...)
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AppUser is the merged Principal + Profile view handed to the rest of the
// application once a session is resolved.
type AppUser struct {
	ID            string    `json:"id"`
	Nombre        string    `json:"nombre"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	Habilitado    bool      `json:"habilitado"`
	FotoPerfil    string    `json:"foto_perfil,omitempty"`
	FechaRegistro time.Time `json:"fecha_registro"`

	Principal *Principal `json:"-"`
}

// Clone returns a shallow copy so local profile patches never mutate a
// snapshot already handed out to observers.
func (u *AppUser) Clone() *AppUser {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
