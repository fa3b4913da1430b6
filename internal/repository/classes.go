package repository

import (
	"context"
	"errors"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

type AnnotationClasses struct {
	service backend.Service
	project domain.Project
}

var _ Manageable[domain.AnnotationClass] = (*AnnotationClasses)(nil)

func NewAnnotationClasses(service backend.Service, project domain.Project) *AnnotationClasses {
	return &AnnotationClasses{service: service, project: project}
}

func (r *AnnotationClasses) scope(cond condition.Condition) condition.Condition {
	return condition.Eq("team_id", r.project.TeamID).
		And(condition.Eq("project_id", r.project.ID)).
		And(cond)
}

func (r *AnnotationClasses) GetAll(ctx context.Context, cond condition.Condition) ([]domain.AnnotationClass, error) {
	raw, err := r.service.SearchAnnotationClasses(ctx, r.scope(cond).Values())
	if err != nil {
		return nil, err
	}
	return decodeList(raw, AnnotationClassFromRecord)
}

func (r *AnnotationClasses) GetOne(ctx context.Context, cond condition.Condition) (*domain.AnnotationClass, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

func (r *AnnotationClasses) Get(ctx context.Context, id int) (*domain.AnnotationClass, error) {
	items, err := r.GetAll(ctx, condition.Condition{})
	if err != nil {
		return nil, err
	}
	return byID(items, id, func(c domain.AnnotationClass) int { return c.ID }), nil
}

func (r *AnnotationClasses) Insert(ctx context.Context, c domain.AnnotationClass) (domain.AnnotationClass, error) {
	created, err := r.InsertMany(ctx, []domain.AnnotationClass{c})
	if err != nil {
		return domain.AnnotationClass{}, err
	}
	if len(created) == 0 {
		return domain.AnnotationClass{}, errors.New("backend created no annotation class")
	}
	return created[0], nil
}

// InsertMany creates classes in one call and returns them with their server ids.
func (r *AnnotationClasses) InsertMany(ctx context.Context, classes []domain.AnnotationClass) ([]domain.AnnotationClass, error) {
	if len(classes) == 0 {
		return []domain.AnnotationClass{}, nil
	}
	req := backend.CreateClassesRequest{TeamID: r.project.TeamID, ProjectID: r.project.ID}
	for _, c := range classes {
		req.Classes = append(req.Classes, backend.ClassInputFrom(c))
	}
	raw, err := r.service.CreateAnnotationClasses(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeList(raw, AnnotationClassFromRecord)
}

// Update is not offered by the platform API; classes are immutable once created.
func (r *AnnotationClasses) Update(context.Context, domain.AnnotationClass) (domain.AnnotationClass, error) {
	return domain.AnnotationClass{}, errors.ErrUnsupported
}

func (r *AnnotationClasses) Delete(ctx context.Context, id int) error {
	return r.service.DeleteAnnotationClass(ctx, r.project.TeamID, r.project.ID, id)
}

func (r *AnnotationClasses) BulkDelete(ctx context.Context, classes []domain.AnnotationClass) (bool, error) {
	for _, c := range classes {
		if err := r.Delete(ctx, c.ID); err != nil {
			return false, err
		}
	}
	return true, nil
}
