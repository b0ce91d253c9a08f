package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

type adminService struct {
	repo      repositories.Repository
	publisher *events.Publisher
	logger    utils.Logger
}

func NewAdminService(repo repositories.Repository, publisher *events.Publisher, logger utils.Logger) AdminService {
	return &adminService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *adminService) ListUsers(ctx context.Context, filters repositories.ProfileFilters) (*UserListResponse, error) {
	profiles, total, err := s.repo.Profile().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &UserListResponse{
		Users: profiles,
		Total: total,
		Size:  filters.Limit,
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	return resp, nil
}

func (s *adminService) SetHabilitado(ctx context.Context, profileID string, habilitado bool) (*models.Profile, error) {
	if err := s.repo.Profile().UpdateFields(ctx, profileID, map[string]any{"habilitado": habilitado}); err != nil {
		return nil, fmt.Errorf("failed to update habilitado: %w", err)
	}

	s.publisher.HabilitadoChanged(ctx, profileID, habilitado)
	s.logger.Info("user enablement changed", "profile_id", profileID, "habilitado", habilitado)

	return s.repo.Profile().GetByID(ctx, profileID)
}

func (s *adminService) SetRole(ctx context.Context, profileID string, rol models.Role) (*models.Profile, error) {
	switch rol {
	case models.RoleEstudiante, models.RoleBarbero, models.RoleAdministrador:
	default:
		return nil, fmt.Errorf("invalid role %q", rol)
	}

	if err := s.repo.Profile().UpdateFields(ctx, profileID, map[string]any{"rol": string(rol)}); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.publisher.RoleChanged(ctx, profileID, string(rol))
	s.logger.Info("user role changed", "profile_id", profileID, "rol", rol)

	return s.repo.Profile().GetByID(ctx, profileID)
}

// ExportUsersXLSX renders the full user roster as a spreadsheet.
func (s *adminService) ExportUsersXLSX(ctx context.Context) ([]byte, error) {
	// Page through the roster; the repository caps page size at 100.
	var profiles []*models.Profile
	for offset := 0; ; offset += 100 {
		page, total, err := s.repo.Profile().List(ctx, repositories.ProfileFilters{Limit: 100, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("failed to load users for export: %w", err)
		}
		profiles = append(profiles, page...)
		if int64(len(profiles)) >= total || len(page) == 0 {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Usuarios"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Nombre", "Email", "Rol", "Habilitado", "Fecha Registro"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range profiles {
		values := []any{p.ID, p.Nombre, p.Email, p.Rol, p.Habilitado, p.FechaRegistro.Format("2006-01-02 15:04")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
