package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

func storageFailure(message string) error {
	return appErrors.Clone(appErrors.ErrStorage, message)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// mutationError maps the outcome of a locked read-modify-write onto the
// service error set. Domain errors raised inside the mutation pass through.
func mutationError(err error, missing, failed string) error {
	var domain *appErrors.Error
	switch {
	case errors.As(err, &domain):
		return err
	case errors.Is(err, repository.ErrRecordNotFound):
		return notFound(missing)
	default:
		return storageFailure(failed)
	}
}

func invalid(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func validate(v *validator.Validate, req interface{}, message string) error {
	if err := v.Struct(req); err != nil {
		return invalid(err, message)
	}
	return nil
}

// activityDate is the day-precision stamp stored in lastActivity.
func activityDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// patchFromFields drops empty strings and nil values so partial requests only
// touch the fields they carry.
func patchFromFields(fields map[string]interface{}) map[string]interface{} {
	patch := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch typed := v.(type) {
		case nil:
			continue
		case *string:
			if typed == nil {
				continue
			}
			patch[k] = strings.TrimSpace(*typed)
		case *int:
			if typed == nil {
				continue
			}
			patch[k] = *typed
		case *bool:
			if typed == nil {
				continue
			}
			patch[k] = *typed
		case *float64:
			if typed == nil {
				continue
			}
			patch[k] = *typed
		default:
			patch[k] = v
		}
	}
	return patch
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, models.Actor, string, map[string]interface{}) {}

func invalidateDashboard(ctx context.Context, cache cacheInvalidator, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
