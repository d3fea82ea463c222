package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type authUserRepository interface {
	List(ctx context.Context) []models.User
	FindByID(ctx context.Context, id string) (*models.User, bool)
	FindByEmail(ctx context.Context, email string) (*models.User, bool)
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.User, bool)
}

type sessionRepository interface {
	Put(ctx context.Context, session models.Session) bool
	Get(ctx context.Context, id string) (*models.Session, bool)
	Refresh(ctx context.Context, id string, identity models.Identity) (*models.Session, bool)
	Delete(ctx context.Context, id string) bool
	PruneExpired(ctx context.Context, now time.Time) (int, bool)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience []string
	TTL      time.Duration
}

// ProfileUpdateRequest carries the self-service profile fields.
type ProfileUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
}

// AuthService signs users in and out and owns their sessions.
type AuthService struct {
	users     authUserRepository
	sessions  sessionRepository
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionRepository, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       utcNow,
	}
}

// Login matches the credentials against active users. Email comparison is exact
// and case-sensitive. On success the user's lastLogin is stamped and a new
// session is stored; on failure nothing is written.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	user := s.matchCredentials(ctx, req.Email, req.Password)
	if user == nil {
		s.metrics.RecordLogin(false)
		s.logger.Info("login rejected", zap.String("email", req.Email))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := s.now()
	updated, ok := s.users.Update(ctx, user.ID, map[string]interface{}{"lastLogin": now})
	if !ok {
		s.metrics.RecordLogin(false)
		return nil, storageFailure("failed to record login")
	}

	session := models.Session{
		ID:        uuid.NewString(),
		Identity:  updated.Identity(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}
	if pruned, ok := s.sessions.PruneExpired(ctx, now); !ok {
		s.logger.Warn("failed to prune expired sessions")
	} else if pruned > 0 {
		s.logger.Debug("pruned expired sessions", zap.Int("count", pruned))
	}

	token, err := s.signSession(session)
	if err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}
	if !s.sessions.Put(ctx, session) {
		s.metrics.RecordLogin(false)
		return nil, storageFailure("failed to persist session")
	}

	s.metrics.RecordLogin(true)
	s.audit.Record(ctx, session.Actor(), models.AuditActionLogin, map[string]interface{}{"sessionId": session.ID, "ip": req.IP})

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TTL.Seconds()),
		Session:   &session,
		RoleName:  access.DisplayName(session.Identity.Role),
		Routes:    access.AccessibleRoutes(session.Identity.Role),
	}, nil
}

func (s *AuthService) matchCredentials(ctx context.Context, email, password string) *models.User {
	for _, candidate := range s.users.List(ctx) {
		if candidate.Email != email || !candidate.IsActive || candidate.PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(password)) == nil {
			user := candidate
			return &user
		}
	}
	return nil
}

// Logout tears the session down. Unknown ids succeed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	session, _ := s.sessions.Get(ctx, sessionID)
	if !s.sessions.Delete(ctx, sessionID) {
		return storageFailure("failed to remove session")
	}
	if session != nil {
		s.audit.Record(ctx, session.Actor(), models.AuditActionLogout, map[string]interface{}{"sessionId": sessionID})
	}
	return nil
}

// Session resolves an active session by id. Expired sessions are removed.
func (s *AuthService) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
	}
	if session.Expired(s.now()) {
		s.sessions.Delete(ctx, sessionID)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	return session, nil
}

// UpdateProfile merges the request into the signed-in user's record and the
// session identity. Role, active flag, id and password cannot be changed here.
func (s *AuthService) UpdateProfile(ctx context.Context, session *models.Session, req ProfileUpdateRequest) (*models.Identity, error) {
	if session == nil || session.Identity.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no user logged in")
	}
	if _, err := s.Session(ctx, session.ID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no user logged in")
	}
	if err := validate(s.validator, req, "invalid profile payload"); err != nil {
		return nil, err
	}

	patch := patchFromFields(map[string]interface{}{
		"name":       req.Name,
		"email":      req.Email,
		"phone":      req.Phone,
		"department": req.Department,
	})
	if _, ok := s.users.FindByID(ctx, session.Identity.ID); !ok {
		return nil, notFound("user not found")
	}
	if req.Email != nil {
		if existing, exists := s.users.FindByEmail(ctx, strings.TrimSpace(*req.Email)); exists && existing.ID != session.Identity.ID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}
	updated, ok := s.users.Update(ctx, session.Identity.ID, patch)
	if !ok {
		return nil, storageFailure("failed to update profile")
	}

	refreshed, ok := s.sessions.Refresh(ctx, session.ID, updated.Identity())
	if !ok {
		return nil, storageFailure("failed to refresh session")
	}
	*session = *refreshed

	s.audit.Record(ctx, session.Actor(), models.AuditActionProfileUpdate, map[string]interface{}{"fields": keys(patch)})
	identity := refreshed.Identity
	return &identity, nil
}

// ValidateToken verifies the signature and expiry of a session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session token expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
	}
	return claims, nil
}

// Authenticate validates a token and resolves the session it names.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	session, err := s.Session(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Identity.ID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session does not match token")
	}
	return s.revalidate(ctx, session)
}

// revalidate checks the session's user against the stored account. Deleted or
// deactivated accounts lose the session at once; a changed account (role,
// name, email) is copied into the session so rights follow the stored record.
func (s *AuthService) revalidate(ctx context.Context, session *models.Session) (*models.Session, error) {
	user, ok := s.users.FindByID(ctx, session.Identity.ID)
	if !ok || !user.IsActive {
		s.sessions.Delete(ctx, session.ID)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is no longer active")
	}
	if user.UpdatedAt.Equal(session.Identity.UpdatedAt) && user.Role == session.Identity.Role {
		return session, nil
	}
	refreshed, ok := s.sessions.Refresh(ctx, session.ID, user.Identity())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
	}
	return refreshed, nil
}

func (s *AuthService) signSession(session models.Session) (string, error) {
	claims := models.SessionClaims{
		SessionID: session.ID,
		UserID:    session.Identity.ID,
		Role:      session.Identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.Identity.ID,
			Issuer:    s.config.Issuer,
			Audience:  s.config.Audience,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// HashPassword hashes a cleartext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortStrings(values []string) {
	sort.Strings(values)
}
