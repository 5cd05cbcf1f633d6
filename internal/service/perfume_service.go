package service

import (
	"context"
	"fmt"
	"time"

	"elegance/internal/model"
	"elegance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// perfumeService implements PerfumeService.
type perfumeService struct {
	perfumeRepo repository.PerfumeRepository
	logger      zerolog.Logger
}

// NewPerfumeService creates a new perfume service.
func NewPerfumeService(perfumeRepo repository.PerfumeRepository, logger zerolog.Logger) PerfumeService {
	return &perfumeService{
		perfumeRepo: perfumeRepo,
		logger:      logger.With().Str("service", "perfume").Logger(),
	}
}

// Create adds a perfume to the catalog.
func (s *perfumeService) Create(ctx context.Context, user *model.User, req *model.PerfumeRequest) (*model.Perfume, error) {
	if err := validatePerfumeRequest(req, true); err != nil {
		return nil, err
	}

	now := time.Now()
	perfume := &model.Perfume{
		ID:          uuid.New(),
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Category:    req.Category,
		Image:       req.Image,
		CreatedBy:   user.ID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.perfumeRepo.Create(ctx, perfume); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("perfume_id", perfume.ID.String()).
		Str("name", perfume.Name).
		Msg("perfume created")

	return perfume, nil
}

// GetAll retrieves active perfumes matching the filter.
func (s *perfumeService) GetAll(ctx context.Context, filter model.PerfumeFilter) ([]model.Perfume, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, model.NewValidationError("invalid category")
	}

	perfumes, err := s.perfumeRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get perfumes: %w", err)
	}
	return perfumes, nil
}

// GetByID retrieves a single active perfume.
func (s *perfumeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Perfume, error) {
	perfume, err := s.perfumeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get perfume: %w", err)
	}
	if perfume == nil || !perfume.IsActive {
		return nil, model.ErrPerfumeNotFound
	}
	return perfume, nil
}

// Update modifies a perfume. Only the creator or a catalog manager may
// update it.
func (s *perfumeService) Update(ctx context.Context, user *model.User, id uuid.UUID, req *model.PerfumeRequest) (*model.Perfume, error) {
	if err := validatePerfumeRequest(req, false); err != nil {
		return nil, err
	}

	perfume, err := s.perfumeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get perfume: %w", err)
	}
	if perfume == nil {
		return nil, model.ErrPerfumeNotFound
	}
	if !s.canManage(user, perfume) {
		return nil, model.ErrForbidden
	}

	if req.Name != "" {
		perfume.Name = req.Name
	}
	if req.Brand != "" {
		perfume.Brand = req.Brand
	}
	if req.Description != "" {
		perfume.Description = req.Description
	}
	if req.Price != nil {
		perfume.Price = *req.Price
	}
	if req.Stock != nil {
		perfume.Stock = *req.Stock
	}
	if req.Category != "" {
		perfume.Category = req.Category
	}
	if req.Image != "" {
		perfume.Image = req.Image
	}

	if err := s.perfumeRepo.Update(ctx, perfume); err != nil {
		return nil, err
	}

	s.logger.Info().Str("perfume_id", id.String()).Msg("perfume updated")

	return perfume, nil
}

// Delete soft-deletes a perfume.
func (s *perfumeService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	perfume, err := s.perfumeRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get perfume: %w", err)
	}
	if perfume == nil {
		return model.ErrPerfumeNotFound
	}
	if !s.canManage(user, perfume) {
		return model.ErrForbidden
	}

	if err := s.perfumeRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("perfume_id", id.String()).Msg("perfume deactivated")

	return nil
}

// canManage allows the catalog-manager capability or the original creator.
func (s *perfumeService) canManage(user *model.User, perfume *model.Perfume) bool {
	return user.Role.CanManageCatalog() || perfume.CreatedBy == user.ID
}

func validatePerfumeRequest(req *model.PerfumeRequest, creating bool) error {
	if req == nil {
		return model.NewValidationError("request body is required")
	}
	if creating {
		if req.Name == "" {
			return model.NewValidationError("name is required")
		}
		if req.Brand == "" {
			return model.NewValidationError("brand is required")
		}
		if req.Description == "" {
			return model.NewValidationError("description is required")
		}
		if req.Price == nil {
			return model.NewValidationError("price is required")
		}
		if req.Stock == nil {
			return model.NewValidationError("stock is required")
		}
		if req.Category == "" {
			return model.NewValidationError("category is required")
		}
	}
	if len(req.Name) > 100 {
		return model.NewValidationError("name cannot exceed 100 characters")
	}
	if len(req.Description) > 500 {
		return model.NewValidationError("description cannot exceed 500 characters")
	}
	if req.Price != nil && *req.Price < 0 {
		return model.NewValidationError("price cannot be negative")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return model.NewValidationError("stock cannot be negative")
	}
	if req.Category != "" && !req.Category.Valid() {
		return model.NewValidationError("invalid category")
	}
	return nil
}
