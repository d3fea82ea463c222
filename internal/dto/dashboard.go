package dto

import (
	"time"

	"github.com/noah-isme/overseas-crm/internal/models"
)

// DashboardStats holds the headline counters shown on the dashboard.
type DashboardStats struct {
	TotalStudents       int `json:"totalStudents"`
	TotalApplications   int `json:"totalApplications"`
	TotalUniversities   int `json:"totalUniversities"`
	PartnerUniversities int `json:"partnerUniversities"`
	TotalEmployees      int `json:"totalEmployees"`
	NewInquiries        int `json:"newInquiries"`
	ActiveApplications  int `json:"activeApplications"`
	EnrolledStudents    int `json:"enrolledStudents"`
	VisaApproved        int `json:"visaApproved"`
}

// DashboardResponse is the dashboard payload for one session.
type DashboardResponse struct {
	Role               string               `json:"role"`
	RoleName           string               `json:"roleName"`
	Scoped             bool                 `json:"scoped"`
	Stats              DashboardStats       `json:"stats"`
	StatusBreakdown    map[string]int       `json:"statusBreakdown"`
	RecentApplications []models.Application `json:"recentApplications"`
	RecentStudents     []models.Student     `json:"recentStudents"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

// CountEntry is one labelled count in a ranked distribution.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ReportResponse is the aggregated reports payload.
type ReportResponse struct {
	TotalStudents        int            `json:"totalStudents"`
	TotalApplications    int            `json:"totalApplications"`
	EnrolledStudents     int            `json:"enrolledStudents"`
	VisaApprovedStudents int            `json:"visaApprovedStudents"`
	SuccessRate          int            `json:"successRate"`
	PartnerUniversities  int            `json:"partnerUniversities"`
	StatusStats          map[string]int `json:"statusStats"`
	TopCountries         []CountEntry   `json:"topCountries"`
	TopPrograms          []CountEntry   `json:"topPrograms"`
	GeneratedAt          time.Time      `json:"generatedAt"`
}

// MetricsSnapshot summarises process metrics.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	StoreFailures            uint64    `json:"storeFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
