package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
)

type applicationRepository interface {
	List(ctx context.Context) []models.Application
	ListByCounselor(ctx context.Context, counselorID string) []models.Application
	FindByID(ctx context.Context, id string) (*models.Application, bool)
	Create(ctx context.Context, application *models.Application) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Application, bool)
	Delete(ctx context.Context, id string) bool
}

// ApplicationRequest holds payload for creating applications.
type ApplicationRequest struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName" validate:"required"`
	University  string `json:"university" validate:"required"`
	Program     string `json:"program"`
	Status      string `json:"status"`
	CurrentStep int    `json:"currentStep" validate:"gte=0"`
	TotalSteps  int    `json:"totalSteps" validate:"gte=0"`
	CounselorID string `json:"counselorId"`
}

// UpdateApplicationRequest carries a partial application update.
type UpdateApplicationRequest struct {
	StudentName *string `json:"studentName" validate:"omitempty,min=1"`
	University  *string `json:"university" validate:"omitempty,min=1"`
	Program     *string `json:"program"`
	Status      *string `json:"status"`
	CurrentStep *int    `json:"currentStep" validate:"omitempty,gte=0"`
	TotalSteps  *int    `json:"totalSteps" validate:"omitempty,gte=0"`
	CounselorID *string `json:"counselorId"`
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	Status string
	Search string
}

// ApplicationService manages university applications.
type ApplicationService struct {
	repo      applicationRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(repo applicationRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns applications visible to the session, most recently updated first.
func (s *ApplicationService) List(ctx context.Context, session *models.Session, filter ApplicationFilter) []models.Application {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	source := s.repo.List
	if owner := scopedOwner(session); owner != "" {
		source = func(ctx context.Context) []models.Application { return s.repo.ListByCounselor(ctx, owner) }
	}
	result := make([]models.Application, 0)
	for _, app := range source(ctx) {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(app.StudentName), term) && !strings.Contains(strings.ToLower(app.University), term) {
			continue
		}
		result = append(result, app)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result
}

// Get returns one application visible to the session.
func (s *ApplicationService) Get(ctx context.Context, session *models.Session, id string) (*models.Application, error) {
	app, ok := s.repo.FindByID(ctx, id)
	if !ok || !visibleTo(session, app.CounselorID) {
		return nil, notFound("application not found")
	}
	return app, nil
}

// Create registers an application.
func (s *ApplicationService) Create(ctx context.Context, session *models.Session, req ApplicationRequest) (*models.Application, error) {
	if err := validate(s.validator, req, "invalid application payload"); err != nil {
		return nil, err
	}
	app := &models.Application{
		StudentID:   req.StudentID,
		StudentName: strings.TrimSpace(req.StudentName),
		University:  strings.TrimSpace(req.University),
		Program:     req.Program,
		Status:      defaultString(req.Status, "Draft"),
		CurrentStep: req.CurrentStep,
		TotalSteps:  req.TotalSteps,
		CounselorID: req.CounselorID,
	}
	if owner := scopedOwner(session); owner != "" {
		app.CounselorID = owner
	}
	if !s.repo.Create(ctx, app) {
		return nil, storageFailure("failed to create application")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return app, nil
}

// Update applies a partial update.
func (s *ApplicationService) Update(ctx context.Context, session *models.Session, id string, req UpdateApplicationRequest) (*models.Application, error) {
	if err := validate(s.validator, req, "invalid application payload"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}
	patch := patchFromFields(map[string]interface{}{
		"studentName": req.StudentName,
		"university":  req.University,
		"program":     req.Program,
		"status":      req.Status,
		"currentStep": req.CurrentStep,
		"totalSteps":  req.TotalSteps,
	})
	if req.CounselorID != nil && scopedOwner(session) == "" {
		patch["counselorId"] = *req.CounselorID
	}
	updated, ok := s.repo.Update(ctx, id, patch)
	if !ok {
		return nil, storageFailure("failed to update application")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return updated, nil
}

// Delete removes an application. Unknown ids succeed.
func (s *ApplicationService) Delete(ctx context.Context, session *models.Session, id string) error {
	if app, ok := s.repo.FindByID(ctx, id); ok && !visibleTo(session, app.CounselorID) {
		return notFound("application not found")
	}
	if !s.repo.Delete(ctx, id) {
		return storageFailure("failed to delete application")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}
