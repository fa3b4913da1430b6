package repository

import (
	"context"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

// ProjectSettings, Workflows and ProjectContributors are read-only views bound to one
// project. The backend replaces these lists as a whole, hence Save instead of Insert.

type ProjectSettings struct {
	service backend.Service
	project domain.Project
}

var _ ReadOnly[domain.ProjectSetting] = (*ProjectSettings)(nil)

func NewProjectSettings(service backend.Service, project domain.Project) *ProjectSettings {
	return &ProjectSettings{service: service, project: project}
}

// GetAll filters client-side: the settings endpoint takes no search parameters.
func (r *ProjectSettings) GetAll(ctx context.Context, cond condition.Condition) ([]domain.ProjectSetting, error) {
	raw, err := r.service.GetProjectSettings(ctx, r.project.TeamID, r.project.ID)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(raw, ProjectSettingFromRecord)
	if err != nil {
		return nil, err
	}
	attr, ok := cond.Get("attribute")
	if !ok {
		return items, nil
	}
	out := []domain.ProjectSetting{}
	for _, s := range items {
		if s.Attribute == attr {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *ProjectSettings) GetOne(ctx context.Context, cond condition.Condition) (*domain.ProjectSetting, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

func (r *ProjectSettings) Save(ctx context.Context, settings []domain.ProjectSetting) ([]domain.ProjectSetting, error) {
	req := backend.SettingsRequest{}
	for _, s := range settings {
		req.Settings = append(req.Settings, backend.SettingInput{Attribute: s.Attribute, Value: s.Value})
	}
	raw, err := r.service.SetProjectSettings(ctx, r.project.TeamID, r.project.ID, req)
	if err != nil {
		return nil, err
	}
	return decodeList(raw, ProjectSettingFromRecord)
}

type Workflows struct {
	service backend.Service
	project domain.Project
}

var _ ReadOnly[domain.Workflow] = (*Workflows)(nil)

func NewWorkflows(service backend.Service, project domain.Project) *Workflows {
	return &Workflows{service: service, project: project}
}

func (r *Workflows) GetAll(ctx context.Context, _ condition.Condition) ([]domain.Workflow, error) {
	raw, err := r.service.GetProjectWorkflows(ctx, r.project.TeamID, r.project.ID)
	if err != nil {
		return nil, err
	}
	return decodeList(raw, WorkflowFromRecord)
}

func (r *Workflows) GetOne(ctx context.Context, cond condition.Condition) (*domain.Workflow, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

// Save replaces the workflow. ClassID must already refer to a class of this project.
func (r *Workflows) Save(ctx context.Context, steps []domain.Workflow) ([]domain.Workflow, error) {
	req := backend.WorkflowsRequest{}
	for _, w := range steps {
		req.Steps = append(req.Steps, backend.WorkflowInput{Step: w.Step, ClassID: w.ClassID, Tool: w.Tool})
	}
	raw, err := r.service.SetProjectWorkflows(ctx, r.project.TeamID, r.project.ID, req)
	if err != nil {
		return nil, err
	}
	return decodeList(raw, WorkflowFromRecord)
}

type ProjectContributors struct {
	service backend.Service
	project domain.Project
}

var _ ReadOnly[domain.User] = (*ProjectContributors)(nil)

func NewProjectContributors(service backend.Service, project domain.Project) *ProjectContributors {
	return &ProjectContributors{service: service, project: project}
}

func (r *ProjectContributors) GetAll(ctx context.Context, _ condition.Condition) ([]domain.User, error) {
	raw, err := r.service.GetProjectContributors(ctx, r.project.TeamID, r.project.ID)
	if err != nil {
		return nil, err
	}
	return decodeList(raw, UserFromRecord)
}

func (r *ProjectContributors) GetOne(ctx context.Context, cond condition.Condition) (*domain.User, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

func (r *ProjectContributors) Share(ctx context.Context, c domain.ProjectContributor) error {
	return r.service.ShareProject(ctx, r.project.TeamID, r.project.ID, backend.ShareProjectRequest{UserID: c.UserID, Role: c.Role})
}
