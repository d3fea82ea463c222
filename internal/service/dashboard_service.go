package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/dto"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard and report payload.
const dashboardCachePattern = "dash:*"

type studentLister interface {
	List(ctx context.Context) []models.Student
}

type applicationLister interface {
	List(ctx context.Context) []models.Application
}

type universityLister interface {
	List(ctx context.Context) []models.University
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
	TopLimit    int
}

// DashboardService composes role-scoped dashboard and report payloads.
type DashboardService struct {
	students     studentLister
	applications applicationLister
	universities universityLister
	employees    employeeLister
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students     studentLister
	Applications applicationLister
	Universities universityLister
	Employees    employeeLister
	Cache        *CacheService
	Logger       *zap.Logger
	Config       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:     params.Students,
		applications: params.Applications,
		universities: params.Universities,
		employees:    params.Employees,
		cache:        params.Cache,
		logger:       logger,
		now:          utcNow,
		cfg:          cfg,
	}
}

// Dashboard returns the session's dashboard and whether it came from cache.
// Counselors and employees only count their own students and applications.
func (s *DashboardService) Dashboard(ctx context.Context, session *models.Session) (*dto.DashboardResponse, bool, error) {
	if session == nil || session.Identity.ID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "no user logged in")
	}
	owner := scopedOwner(session)
	cacheKey := fmt.Sprintf("dash:home:%s", scopeKey(owner))

	var resp dto.DashboardResponse
	hit, err := s.cache.Remember(ctx, cacheKey, s.cfg.CacheTTL, &resp, func() (interface{}, error) {
		return s.composeDashboard(ctx, owner), nil
	})
	if err != nil {
		return nil, false, err
	}
	resp.Role = string(session.Identity.Role)
	resp.RoleName = access.DisplayName(session.Identity.Role)
	return &resp, hit, nil
}

func (s *DashboardService) composeDashboard(ctx context.Context, owner string) dto.DashboardResponse {
	students := s.scopedStudents(ctx, owner)
	applications := s.scopedApplications(ctx, owner)
	universities := s.universities.List(ctx)

	stats := dto.DashboardStats{
		TotalStudents:     len(students),
		TotalApplications: len(applications),
		TotalUniversities: len(universities),
		TotalEmployees:    len(s.employees.List(ctx)),
	}
	breakdown := make(map[string]int)
	for _, st := range students {
		breakdown[st.Status]++
		switch st.Status {
		case models.StudentStatusInquiry:
			stats.NewInquiries++
		case models.StudentStatusEnrolled:
			stats.EnrolledStudents++
		case models.StudentStatusVisaApproved:
			stats.VisaApproved++
		}
	}
	for _, app := range applications {
		if !app.Closed() {
			stats.ActiveApplications++
		}
	}
	for _, u := range universities {
		if u.IsPartner {
			stats.PartnerUniversities++
		}
	}

	sort.SliceStable(applications, func(i, j int) bool { return applications[i].UpdatedAt.After(applications[j].UpdatedAt) })
	sort.SliceStable(students, func(i, j int) bool { return students[i].UpdatedAt.After(students[j].UpdatedAt) })

	return dto.DashboardResponse{
		Scoped:             owner != "",
		Stats:              stats,
		StatusBreakdown:    breakdown,
		RecentApplications: head(applications, s.cfg.RecentLimit),
		RecentStudents:     head(students, s.cfg.RecentLimit),
		GeneratedAt:        s.now(),
	}
}

// Report aggregates destination, program and status distributions. Only
// counselors are scoped to their own records here.
func (s *DashboardService) Report(ctx context.Context, session *models.Session) (*dto.ReportResponse, bool, error) {
	if session == nil || session.Identity.ID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "no user logged in")
	}
	var owner string
	if session.Identity.Role == access.RoleCounselor {
		owner = session.Identity.ID
	}
	cacheKey := fmt.Sprintf("dash:report:%s", scopeKey(owner))

	var resp dto.ReportResponse
	hit, err := s.cache.Remember(ctx, cacheKey, s.cfg.CacheTTL, &resp, func() (interface{}, error) {
		return s.composeReport(ctx, owner), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &resp, hit, nil
}

func (s *DashboardService) composeReport(ctx context.Context, owner string) dto.ReportResponse {
	students := s.scopedStudents(ctx, owner)
	applications := s.scopedApplications(ctx, owner)

	resp := dto.ReportResponse{
		TotalStudents:     len(students),
		TotalApplications: len(applications),
		StatusStats:       make(map[string]int),
		GeneratedAt:       s.now(),
	}
	countries := make(map[string]int)
	programs := make(map[string]int)
	for _, st := range students {
		resp.StatusStats[st.Status]++
		countries[st.Destination]++
		programs[st.PreferredProgram]++
		switch st.Status {
		case models.StudentStatusEnrolled:
			resp.EnrolledStudents++
		case models.StudentStatusVisaApproved:
			resp.VisaApprovedStudents++
		}
	}
	resp.SuccessRate = successRate(resp.EnrolledStudents, resp.TotalApplications)
	for _, u := range s.universities.List(ctx) {
		if u.IsPartner {
			resp.PartnerUniversities++
		}
	}
	resp.TopCountries = topCounts(countries, s.cfg.TopLimit)
	resp.TopPrograms = topCounts(programs, s.cfg.TopLimit)
	return resp
}

func (s *DashboardService) scopedStudents(ctx context.Context, owner string) []models.Student {
	all := s.students.List(ctx)
	if owner == "" {
		return all
	}
	scoped := make([]models.Student, 0, len(all))
	for _, st := range all {
		if st.CounselorID == owner {
			scoped = append(scoped, st)
		}
	}
	return scoped
}

func (s *DashboardService) scopedApplications(ctx context.Context, owner string) []models.Application {
	all := s.applications.List(ctx)
	if owner == "" {
		return all
	}
	scoped := make([]models.Application, 0, len(all))
	for _, app := range all {
		if app.CounselorID == owner {
			scoped = append(scoped, app)
		}
	}
	return scoped
}

// successRate is enrolled students over applications as a rounded percentage.
func successRate(enrolled, applications int) int {
	if applications <= 0 {
		return 0
	}
	return int(math.Round(float64(enrolled) / float64(applications) * 100))
}

// topCounts ranks counts descending, breaking ties by label.
func topCounts(counts map[string]int, limit int) []dto.CountEntry {
	entries := make([]dto.CountEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, dto.CountEntry{Label: label, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return head(entries, limit)
}

func head[T any](items []T, limit int) []T {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func scopeKey(owner string) string {
	if owner == "" {
		return "all"
	}
	return "user:" + owner
}
