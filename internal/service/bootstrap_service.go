package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

// SchemaVersion is the persisted layout version written on first start.
const SchemaVersion = 2

type appStateRepository interface {
	IsInitialized(ctx context.Context) bool
	SetInitialized(ctx context.Context) bool
	SchemaVersion(ctx context.Context) int
	SetSchemaVersion(ctx context.Context, version int) bool
	Reset(ctx context.Context) bool
}

type seedUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, bool)
	Create(ctx context.Context, user *models.User) bool
}

// SeedAccount describes the super user created on first start.
type SeedAccount struct {
	Name     string
	Email    string
	Password string
}

// BootstrapService initializes an empty store and resets a populated one.
type BootstrapService struct {
	state  appStateRepository
	users  seedUserRepository
	audit  auditRecorder
	cache  cacheInvalidator
	seed   SeedAccount
	logger *zap.Logger
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(state appStateRepository, users seedUserRepository, audit auditRecorder, cache cacheInvalidator, seed SeedAccount, logger *zap.Logger) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &BootstrapService{state: state, users: users, audit: audit, cache: cache, seed: seed, logger: logger}
}

// Initialize seeds the super user once. It is a no-op on an initialized store
// apart from upgrading the recorded schema version.
func (s *BootstrapService) Initialize(ctx context.Context) error {
	if s.state.IsInitialized(ctx) {
		if s.state.SchemaVersion(ctx) < SchemaVersion && !s.state.SetSchemaVersion(ctx, SchemaVersion) {
			return storageFailure("failed to record schema version")
		}
		return nil
	}

	email := strings.TrimSpace(s.seed.Email)
	if email == "" || s.seed.Password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "seed account email and password are required")
	}
	if _, exists := s.users.FindByEmail(ctx, email); !exists {
		hash, err := HashPassword(s.seed.Password)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash seed password")
		}
		user := &models.User{
			Name:         defaultString(s.seed.Name, "Super User"),
			Email:        email,
			PasswordHash: hash,
			Role:         access.RoleSuperUser,
			IsActive:     true,
		}
		if !s.users.Create(ctx, user) {
			return storageFailure("failed to seed super user")
		}
		s.logger.Info("seeded super user", zap.String("email", email))
	}

	if !s.state.SetSchemaVersion(ctx, SchemaVersion) || !s.state.SetInitialized(ctx) {
		return storageFailure("failed to mark store initialized")
	}
	return nil
}

// Reset wipes every stored key and seeds the store again.
func (s *BootstrapService) Reset(ctx context.Context, actor models.Actor) error {
	if !s.state.Reset(ctx) {
		return storageFailure("failed to clear store")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	s.logger.Warn("store reset", zap.String("actorId", actor.ID))
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, models.AuditActionSystemReset, map[string]interface{}{"schemaVersion": SchemaVersion})
	return nil
}
