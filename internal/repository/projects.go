package repository

import (
	"context"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

// Projects is scoped to one team.
type Projects struct {
	service backend.Service
	teamID  int
}

var _ Manageable[domain.Project] = (*Projects)(nil)

func NewProjects(service backend.Service, teamID int) *Projects {
	return &Projects{service: service, teamID: teamID}
}

func (r *Projects) scope(cond condition.Condition) condition.Condition {
	return condition.Eq("team_id", r.teamID).And(cond)
}

func (r *Projects) GetAll(ctx context.Context, cond condition.Condition) ([]domain.Project, error) {
	raw, err := r.service.SearchProjects(ctx, r.scope(cond).Values())
	if err != nil {
		return nil, err
	}
	return decodeList(raw, ProjectFromRecord)
}

func (r *Projects) GetOne(ctx context.Context, cond condition.Condition) (*domain.Project, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

// Get fetches a project by id; nil when the backend reports it missing.
func (r *Projects) Get(ctx context.Context, id int) (*domain.Project, error) {
	raw, err := r.service.GetProject(ctx, r.teamID, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	p, err := ProjectFromRecord(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Projects) Insert(ctx context.Context, p domain.Project) (domain.Project, error) {
	raw, err := r.service.CreateProject(ctx, backend.CreateProjectRequest{
		TeamID:      r.teamID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
	})
	if err != nil {
		return domain.Project{}, err
	}
	return ProjectFromRecord(raw)
}

func (r *Projects) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	raw, err := r.service.UpdateProject(ctx, r.teamID, p.ID, backend.UpdateProjectRequest{
		Name:        p.Name,
		Description: p.Description,
	})
	if err != nil {
		return domain.Project{}, err
	}
	return ProjectFromRecord(raw)
}

func (r *Projects) Delete(ctx context.Context, id int) error {
	return r.service.DeleteProject(ctx, r.teamID, id)
}

func (r *Projects) BulkDelete(ctx context.Context, projects []domain.Project) (bool, error) {
	for _, p := range projects {
		if err := r.Delete(ctx, p.ID); err != nil {
			return false, err
		}
	}
	return true, nil
}
