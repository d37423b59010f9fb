package repository

import (
	"context"

	"learnpress-facade/internal/domain/model"
)

// UserDirectory resolves account data owned by the identity system.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	IsAdmin(ctx context.Context, id int64) (bool, error)
}

// CourseDirectory resolves course content owned by the LMS.
type CourseDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.Course, error)
}
