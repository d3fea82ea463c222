package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
)

type universityRepository interface {
	List(ctx context.Context) []models.University
	FindByID(ctx context.Context, id string) (*models.University, bool)
	Create(ctx context.Context, university *models.University) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.University, bool)
	Delete(ctx context.Context, id string) bool
}

// UniversityRequest holds payload for creating universities.
type UniversityRequest struct {
	Name      string `json:"name" validate:"required"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Website   string `json:"website" validate:"omitempty,url"`
	IsPartner bool   `json:"isPartner"`
}

// UpdateUniversityRequest carries a partial university update.
type UpdateUniversityRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Country   *string `json:"country"`
	City      *string `json:"city"`
	Website   *string `json:"website" validate:"omitempty,url"`
	IsPartner *bool   `json:"isPartner"`
}

// UniversityService manages destination universities.
type UniversityService struct {
	repo      universityRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUniversityService constructs a UniversityService.
func NewUniversityService(repo universityRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *UniversityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns universities sorted by name; partnerOnly keeps partners.
func (s *UniversityService) List(ctx context.Context, partnerOnly bool) []models.University {
	result := make([]models.University, 0)
	for _, u := range s.repo.List(ctx) {
		if partnerOnly && !u.IsPartner {
			continue
		}
		result = append(result, u)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

func (s *UniversityService) Get(ctx context.Context, id string) (*models.University, error) {
	u, ok := s.repo.FindByID(ctx, id)
	if !ok {
		return nil, notFound("university not found")
	}
	return u, nil
}

func (s *UniversityService) Create(ctx context.Context, req UniversityRequest) (*models.University, error) {
	if err := validate(s.validator, req, "invalid university payload"); err != nil {
		return nil, err
	}
	u := &models.University{
		Name:      strings.TrimSpace(req.Name),
		Country:   req.Country,
		City:      req.City,
		Website:   req.Website,
		IsPartner: req.IsPartner,
	}
	if !s.repo.Create(ctx, u) {
		return nil, storageFailure("failed to create university")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return u, nil
}

func (s *UniversityService) Update(ctx context.Context, id string, req UpdateUniversityRequest) (*models.University, error) {
	if err := validate(s.validator, req, "invalid university payload"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	patch := patchFromFields(map[string]interface{}{
		"name":      req.Name,
		"country":   req.Country,
		"city":      req.City,
		"website":   req.Website,
		"isPartner": req.IsPartner,
	})
	updated, ok := s.repo.Update(ctx, id, patch)
	if !ok {
		return nil, storageFailure("failed to update university")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return updated, nil
}

func (s *UniversityService) Delete(ctx context.Context, id string) error {
	if !s.repo.Delete(ctx, id) {
		return storageFailure("failed to delete university")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}
