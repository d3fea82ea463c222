package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type studentRepository interface {
	Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, int)
	FindByID(ctx context.Context, id string) (*models.Student, bool)
	Create(ctx context.Context, student *models.Student) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Student, bool)
	Mutate(ctx context.Context, id string, fn func(*models.Student) error) (*models.Student, error)
	Delete(ctx context.Context, id string) bool
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, bool)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	FullName            string `json:"fullName"`
	Email               string `json:"email" validate:"omitempty,email"`
	Phone               string `json:"phone"`
	Status              string `json:"status"`
	Priority            string `json:"priority"`
	Destination         string `json:"destination"`
	PreferredProgram    string `json:"preferredProgram"`
	PreferredUniversity string `json:"preferredUniversity"`
	CounselorID         string `json:"counselorId"`
	AssignedCounselor   string `json:"assignedCounselor"`
}

// UpdateStudentRequest carries a partial student update.
type UpdateStudentRequest struct {
	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	FullName            *string `json:"fullName" validate:"omitempty,min=1"`
	Email               *string `json:"email" validate:"omitempty,email"`
	Phone               *string `json:"phone"`
	Status              *string `json:"status"`
	Priority            *string `json:"priority"`
	Destination         *string `json:"destination"`
	PreferredProgram    *string `json:"preferredProgram"`
	PreferredUniversity *string `json:"preferredUniversity"`
	CounselorID         *string `json:"counselorId"`
	AssignedCounselor   *string `json:"assignedCounselor"`
}

// WalkInRequest registers a student who arrived at the front desk.
type WalkInRequest struct {
	FirstName           string `json:"firstName" validate:"required"`
	LastName            string `json:"lastName" validate:"required"`
	Email               string `json:"email" validate:"omitempty,email"`
	Phone               string `json:"phone" validate:"required"`
	Destination         string `json:"destination"`
	PreferredProgram    string `json:"preferredProgram"`
	PreferredUniversity string `json:"preferredUniversity"`
	SupportAssigneeID   string `json:"supportAssigneeId"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	users     userLookup
	audit     auditRecorder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service. cache may be nil.
func NewStudentService(repo studentRepository, users userLookup, audit auditRecorder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &StudentService{repo: repo, users: users, audit: audit, cache: cache, validator: validate, logger: logger, now: utcNow}
}

// List returns one page of students. Counselors and employees only see the
// students assigned to them.
func (s *StudentService) List(ctx context.Context, session *models.Session, filter models.StudentFilter) ([]models.Student, *models.Pagination) {
	if owner := scopedOwner(session); owner != "" {
		filter.CounselorID = owner
	}
	students, total := s.repo.Search(ctx, filter)
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// Get returns one student visible to the session.
func (s *StudentService) Get(ctx context.Context, session *models.Session, id string) (*models.Student, error) {
	student, ok := s.repo.FindByID(ctx, id)
	if !ok || !visibleTo(session, student.CounselorID) {
		return nil, notFound("student not found")
	}
	return student, nil
}

// Create registers a new student. A counselor creating a student owns it.
func (s *StudentService) Create(ctx context.Context, session *models.Session, req CreateStudentRequest) (*models.Student, error) {
	if err := validate(s.validator, req, "invalid student payload"); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	if fullName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student name is required")
	}

	student := &models.Student{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		FullName:            fullName,
		Email:               req.Email,
		Phone:               req.Phone,
		Status:              defaultString(req.Status, models.StudentStatusInquiry),
		Priority:            defaultString(req.Priority, models.StudentPriorityMedium),
		Destination:         req.Destination,
		PreferredProgram:    req.PreferredProgram,
		PreferredUniversity: req.PreferredUniversity,
		CounselorID:         req.CounselorID,
		AssignedCounselor:   req.AssignedCounselor,
		JoinDate:            activityDate(s.now()),
		LastActivity:        activityDate(s.now()),
		RemarkHistory:       []models.RemarkEntry{},
	}
	if owner := scopedOwner(session); owner != "" {
		student.CounselorID = owner
		student.AssignedCounselor = session.Identity.Name
	}
	if !s.repo.Create(ctx, student) {
		return nil, storageFailure("failed to create student")
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, session.Actor(), models.AuditActionStudentCreate, map[string]interface{}{"studentId": student.ID, "student": student.FullName})
	return student, nil
}

// Update applies a partial update.
func (s *StudentService) Update(ctx context.Context, session *models.Session, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := validate(s.validator, req, "invalid student payload"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}
	patch := patchFromFields(map[string]interface{}{
		"firstName":           req.FirstName,
		"lastName":            req.LastName,
		"fullName":            req.FullName,
		"email":               req.Email,
		"phone":               req.Phone,
		"status":              req.Status,
		"priority":            req.Priority,
		"destination":         req.Destination,
		"preferredProgram":    req.PreferredProgram,
		"preferredUniversity": req.PreferredUniversity,
		"assignedCounselor":   req.AssignedCounselor,
	})
	if req.CounselorID != nil && scopedOwner(session) == "" {
		patch["counselorId"] = strings.TrimSpace(*req.CounselorID)
	}
	patch["lastActivity"] = activityDate(s.now())

	updated, ok := s.repo.Update(ctx, id, patch)
	if !ok {
		return nil, storageFailure("failed to update student")
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, session.Actor(), models.AuditActionStudentUpdate, map[string]interface{}{"studentId": id, "fields": keys(patch)})
	return updated, nil
}

// Delete removes a student. Deleting an unknown id succeeds.
func (s *StudentService) Delete(ctx context.Context, session *models.Session, id string) error {
	if student, ok := s.repo.FindByID(ctx, id); ok && !visibleTo(session, student.CounselorID) {
		return notFound("student not found")
	}
	if !s.repo.Delete(ctx, id) {
		return storageFailure("failed to delete student")
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, session.Actor(), models.AuditActionStudentDelete, map[string]interface{}{"studentId": id})
	return nil
}

// AddRemark appends a note to the student's remark history.
func (s *StudentService) AddRemark(ctx context.Context, session *models.Session, id, remark string) (*models.Student, error) {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remark is required")
	}
	updated, err := s.appendRemark(ctx, session, id, remark, nil)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionStudentRemark, map[string]interface{}{"studentId": id})
	return updated, nil
}

// AssignSupport hands the student to a customer support agent.
func (s *StudentService) AssignSupport(ctx context.Context, session *models.Session, studentID, supportID string) (*models.Student, error) {
	agent, ok := s.users.FindByID(ctx, supportID)
	if !ok || agent.Role != access.RoleCustomerSupport || !agent.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be an active customer support user")
	}

	updated, err := s.repo.Mutate(ctx, studentID, func(student *models.Student) error {
		if !visibleTo(session, student.CounselorID) {
			return notFound("student not found")
		}
		student.SupportAssigneeID = supportID
		student.LastActivity = activityDate(s.now())
		return nil
	})
	if err != nil {
		return nil, mutationError(err, "student not found", "failed to assign support")
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, session.Actor(), models.AuditActionAssignSupport, map[string]interface{}{"studentId": studentID, "supportAssigneeId": supportID})
	return updated, nil
}

// SetInstructorStatus records the instructor delivery status together with a
// prefixed remark.
func (s *StudentService) SetInstructorStatus(ctx context.Context, session *models.Session, studentID, status, remark string) (*models.Student, error) {
	if status != models.InstructorStatusSent && status != models.InstructorStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be sent or cancelled")
	}
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remark is required")
	}
	updated, err := s.appendRemark(ctx, session, studentID, fmt.Sprintf("[Instructor: %s] %s", status, remark), func(student *models.Student) {
		student.InstructorStatus = status
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionInstructorStatus, map[string]interface{}{"studentId": studentID, "status": status})
	return updated, nil
}

// WalkIn registers a walk-in inquiry and optionally hands it to support.
func (s *StudentService) WalkIn(ctx context.Context, session *models.Session, req WalkInRequest) (*models.Student, error) {
	if err := validate(s.validator, req, "invalid walk-in payload"); err != nil {
		return nil, err
	}
	var assigned string
	if req.SupportAssigneeID != "" {
		agent, ok := s.users.FindByID(ctx, req.SupportAssigneeID)
		if !ok || agent.Role != access.RoleCustomerSupport || !agent.IsActive {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be an active customer support user")
		}
		assigned = agent.Name
	}

	today := activityDate(s.now())
	student := &models.Student{
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		FullName:            strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName),
		Email:               req.Email,
		Phone:               req.Phone,
		Destination:         req.Destination,
		PreferredProgram:    req.PreferredProgram,
		PreferredUniversity: req.PreferredUniversity,
		Status:              models.StudentStatusInquiry,
		Priority:            models.StudentPriorityMedium,
		AssignedCounselor:   assigned,
		SupportAssigneeID:   req.SupportAssigneeID,
		JoinDate:            today,
		LastActivity:        today,
		RemarkHistory:       []models.RemarkEntry{},
	}
	if !s.repo.Create(ctx, student) {
		return nil, storageFailure("failed to add walk-in student")
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, session.Actor(), models.AuditActionWalkIn, map[string]interface{}{"student": student.FullName, "supportAssigneeId": req.SupportAssigneeID})
	return student, nil
}

// appendRemark adds one history entry inside the locked update so concurrent
// remarks on the same student all survive. The optional also hook edits the
// record in the same cycle.
func (s *StudentService) appendRemark(ctx context.Context, session *models.Session, id, remark string, also func(*models.Student)) (*models.Student, error) {
	actor := session.Actor()
	updated, err := s.repo.Mutate(ctx, id, func(student *models.Student) error {
		if !visibleTo(session, student.CounselorID) {
			return notFound("student not found")
		}
		now := s.now()
		student.RemarkHistory = append(student.RemarkHistory, models.RemarkEntry{
			UserID:   actor.ID,
			UserName: actor.Name,
			Remark:   remark,
			Date:     now,
		})
		student.LastActivity = activityDate(now)
		if also != nil {
			also(student)
		}
		return nil
	})
	if err != nil {
		return nil, mutationError(err, "student not found", "failed to update remarks")
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	invalidateDashboard(ctx, s.cache, s.logger)
}

// scopedOwner returns the user id a session is restricted to, or "" when the
// session sees every record.
func scopedOwner(session *models.Session) string {
	if session == nil {
		return ""
	}
	switch session.Identity.Role {
	case access.RoleCounselor, access.RoleEmployee:
		return session.Identity.ID
	}
	return ""
}

func visibleTo(session *models.Session, counselorID string) bool {
	owner := scopedOwner(session)
	return owner == "" || owner == counselorID
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
