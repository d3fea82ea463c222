package repository

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	students *Collection[models.Student]
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *StudentRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &StudentRepository{students: NewCollection[models.Student](store, kvstore.KeyStudents, opts...)}
}

// List returns every student in insertion order.
func (r *StudentRepository) List(ctx context.Context) []models.Student {
	return r.students.All(ctx)
}

// Search returns one page of students matching filter, most recently updated
// first, together with the total number of matches.
func (r *StudentRepository) Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, int) {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := r.students.Filter(ctx, func(s models.Student) bool {
		if filter.CounselorID != "" && s.CounselorID != filter.CounselorID {
			return false
		}
		if filter.Status != "" && s.Status != filter.Status {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(s.FullName), term) ||
			strings.Contains(strings.ToLower(s.Email), term) ||
			strings.Contains(s.Phone, term)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	page, size := normalisePage(filter.Page, filter.PageSize)
	start := (page - 1) * size
	if start >= total {
		return []models.Student{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// SetAll replaces the students collection.
func (r *StudentRepository) SetAll(ctx context.Context, students []models.Student) bool {
	return r.students.SetAll(ctx, students)
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, bool) {
	return r.students.Get(ctx, id)
}

// Create inserts a student, assigning id and timestamps.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) bool {
	if student.RemarkHistory == nil {
		student.RemarkHistory = []models.RemarkEntry{}
	}
	return r.students.Add(ctx, student)
}

// Update merges patch into the stored student.
func (r *StudentRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Student, bool) {
	return r.students.Update(ctx, id, patch)
}

// Mutate applies fn to the stored student under the collection lock.
func (r *StudentRepository) Mutate(ctx context.Context, id string, fn func(*models.Student) error) (*models.Student, error) {
	return r.students.Mutate(ctx, id, fn)
}

// Delete removes a student. Deleting an unknown id succeeds.
func (r *StudentRepository) Delete(ctx context.Context, id string) bool {
	return r.students.Delete(ctx, id)
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
