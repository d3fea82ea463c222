package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context) []models.User
	ListByRole(ctx context.Context, role access.Role) []models.User
	FindByID(ctx context.Context, id string) (*models.User, bool)
	FindByEmail(ctx context.Context, email string) (*models.User, bool)
	Create(ctx context.Context, user *models.User) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.User, bool)
	Delete(ctx context.Context, id string) bool
}

// CreateUserRequest represents payload for creating staff accounts.
type CreateUserRequest struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Password   string      `json:"password" validate:"required,min=6"`
	Role       access.Role `json:"role" validate:"required"`
	Phone      string      `json:"phone"`
	Department string      `json:"department"`
	IsActive   *bool       `json:"isActive"`
}

// UpdateUserRequest carries the fields an administrator may change.
type UpdateUserRequest struct {
	Name       *string      `json:"name" validate:"omitempty,min=1"`
	Email      *string      `json:"email" validate:"omitempty,email"`
	Password   *string      `json:"password" validate:"omitempty,min=6"`
	Role       *access.Role `json:"role"`
	Phone      *string      `json:"phone"`
	Department *string      `json:"department"`
	IsActive   *bool        `json:"isActive"`
}

// UserService handles staff account management.
type UserService struct {
	repo      userRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &UserService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns identities matching filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) []models.Identity {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Identity, 0)
	for _, user := range s.repo.List(ctx) {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && user.IsActive != *filter.Active {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(user.Name), term) && !strings.Contains(strings.ToLower(user.Email), term) {
			continue
		}
		result = append(result, user.Identity())
	}
	return result
}

// SupportAgents lists the active customer support users.
func (s *UserService) SupportAgents(ctx context.Context) []models.Identity {
	agents := make([]models.Identity, 0)
	for _, user := range s.repo.ListByRole(ctx, access.RoleCustomerSupport) {
		if user.IsActive {
			agents = append(agents, user.Identity())
		}
	}
	return agents
}

// Get returns one identity.
func (s *UserService) Get(ctx context.Context, id string) (*models.Identity, error) {
	user, ok := s.repo.FindByID(ctx, id)
	if !ok {
		return nil, notFound("user not found")
	}
	identity := user.Identity()
	return &identity, nil
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.Identity, error) {
	if err := validate(s.validator, req, "invalid user payload"); err != nil {
		return nil, err
	}
	role, ok := access.ParseRole(string(req.Role))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if _, exists := s.repo.FindByEmail(ctx, req.Email); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Phone:        req.Phone,
		Department:   req.Department,
		IsActive:     active,
	}
	if !s.repo.Create(ctx, user) {
		return nil, storageFailure("failed to create user")
	}
	s.audit.Record(ctx, actor, models.AuditActionUserCreate, map[string]interface{}{"userId": user.ID, "role": string(role)})
	identity := user.Identity()
	return &identity, nil
}

// Update modifies an account.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, req UpdateUserRequest) (*models.Identity, error) {
	if err := validate(s.validator, req, "invalid user payload"); err != nil {
		return nil, err
	}
	if _, ok := s.repo.FindByID(ctx, id); !ok {
		return nil, notFound("user not found")
	}

	patch := patchFromFields(map[string]interface{}{
		"name":       req.Name,
		"email":      req.Email,
		"phone":      req.Phone,
		"department": req.Department,
		"isActive":   req.IsActive,
	})
	if req.Email != nil {
		if existing, exists := s.repo.FindByEmail(ctx, *req.Email); exists && existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}
	if req.Role != nil {
		role, ok := access.ParseRole(string(*req.Role))
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		patch["role"] = role
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		patch["passwordHash"] = hash
	}

	updated, ok := s.repo.Update(ctx, id, patch)
	if !ok {
		return nil, storageFailure("failed to update user")
	}
	s.audit.Record(ctx, actor, models.AuditActionUserUpdate, map[string]interface{}{"userId": id, "fields": keys(patch)})
	identity := updated.Identity()
	return &identity, nil
}

// Delete removes an account. Removing your own account is rejected.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if actor.ID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete the signed-in account")
	}
	if !s.repo.Delete(ctx, id) {
		return storageFailure("failed to delete user")
	}
	s.audit.Record(ctx, actor, models.AuditActionUserDelete, map[string]interface{}{"userId": id})
	return nil
}
