package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

type recordedAudit struct {
	Actor   models.Actor
	Action  string
	Details map[string]interface{}
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (f *fakeAudit) Record(_ context.Context, actor models.Actor, action string, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedAudit{Actor: actor, Action: action, Details: details})
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

func (f *fakeAudit) last() recordedAudit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[len(f.entries)-1]
}

type fakeInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	return nil
}

func newMemoryStore() *kvstore.Store {
	return kvstore.New(kvstore.NewMemoryDriver(), nil, nil)
}

// slowDriver delays every write so concurrent read-modify-write cycles overlap.
type slowDriver struct {
	*kvstore.MemoryDriver
	delay time.Duration
}

func (d slowDriver) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(d.delay)
	return d.MemoryDriver.Set(ctx, key, value)
}

func newSlowStore(delay time.Duration) *kvstore.Store {
	return kvstore.New(slowDriver{MemoryDriver: kvstore.NewMemoryDriver(), delay: delay}, nil, nil)
}

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// seedUser stores an active user with the given role and password.
func seedUser(t *testing.T, repo *repository.UserRepository, name, email, password string, role access.Role) models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashForTest(t, password),
		Role:         role,
		IsActive:     true,
	}
	require.True(t, repo.Create(context.Background(), user))
	return *user
}

func sessionFor(user models.User) *models.Session {
	return &models.Session{ID: "session-" + user.ID, Identity: user.Identity()}
}
