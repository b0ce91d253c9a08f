package models

import (
	"time"

	"gorm.io/datatypes"
)

type MaterialTipo string

const (
	MaterialVideo MaterialTipo = "video"
	MaterialPDF   MaterialTipo = "pdf"
)

type Curso struct {
	ID               string                      `json:"id" gorm:"primaryKey;size:255"`
	Titulo           string                      `json:"titulo" gorm:"not null;size:200"`
	Descripcion      string                      `json:"descripcion" gorm:"type:text"`
	ImagenPortadaURL *string                     `json:"imagen_portada_url" gorm:"size:500"`
	VideoURL         *string                     `json:"video_url" gorm:"size:500"`
	MaterialURL      *string                     `json:"material_url" gorm:"size:500"`
	Categorias       datatypes.JSONSlice[string] `json:"categorias"`
	Publicado        bool                        `json:"publicado" gorm:"default:false;index"`
	InstructorID     string                      `json:"instructor_id" gorm:"size:255;index"`
	Instructor       *Profile                    `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Materiales       []Material                  `json:"materiales,omitempty" gorm:"foreignKey:CursoID"`
	FechaCreacion    time.Time                   `json:"fecha_creacion"`
	ActualizadoEn    time.Time                   `json:"actualizado_en"`
}

func (Curso) TableName() string {
	return "cursos"
}

type Material struct {
	ID            string       `json:"id" gorm:"primaryKey;size:255"`
	CursoID       string       `json:"curso_id" gorm:"size:255;index;not null"`
	Nombre        string       `json:"nombre" gorm:"size:200"`
	Tipo          MaterialTipo `json:"tipo" gorm:"size:20"`
	URL           string       `json:"url" gorm:"size:500"`
	FechaCreacion time.Time    `json:"fecha_creacion"`
}

func (Material) TableName() string {
	return "materiales"
}
