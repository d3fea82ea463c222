package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// UserRepository manages persistence for staff accounts.
type UserRepository struct {
	users *Collection[models.User]
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *UserRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &UserRepository{users: NewCollection[models.User](store, kvstore.KeyUsers, opts...)}
}

// List returns every user in insertion order.
func (r *UserRepository) List(ctx context.Context) []models.User {
	return r.users.All(ctx)
}

// SetAll replaces the users collection.
func (r *UserRepository) SetAll(ctx context.Context, users []models.User) bool {
	return r.users.SetAll(ctx, users)
}

// FindByID fetches a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, bool) {
	return r.users.Get(ctx, id)
}

// FindByEmail matches the email exactly, case included.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, bool) {
	return r.users.Find(ctx, func(u models.User) bool { return u.Email == email })
}

// ListByRole returns the users holding role.
func (r *UserRepository) ListByRole(ctx context.Context, role access.Role) []models.User {
	return r.users.Filter(ctx, func(u models.User) bool { return u.Role == role })
}

// Create inserts a user, assigning id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) bool {
	return r.users.Add(ctx, user)
}

// Update merges patch into the stored user.
func (r *UserRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.User, bool) {
	return r.users.Update(ctx, id, patch)
}

// Delete removes a user. Deleting an unknown id succeeds.
func (r *UserRepository) Delete(ctx context.Context, id string) bool {
	return r.users.Delete(ctx, id)
}
