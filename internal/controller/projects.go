package controller

import (
	"context"

	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

func (c *Controller) SearchProjects(ctx context.Context, name string, exact bool) (*response.Response[[]domain.Project], error) {
	return run(ctx, func(resp *response.Response[[]domain.Project]) usecase.UseCase {
		return usecase.NewSearchProjects(c.projects, name, exact, resp)
	}), nil
}

func (c *Controller) GetProjectMetadata(ctx context.Context, name string, opts usecase.MetadataOptions) (*response.Response[domain.ProjectMetadata], error) {
	project, err := c.resolveProject(ctx, name)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.ProjectMetadata]) usecase.UseCase {
		return usecase.NewGetProjectMetadata(project, c.resources(project), opts, resp)
	}), nil
}

func (c *Controller) CreateProject(ctx context.Context, project domain.Project, setup usecase.ProjectSetup) (*response.Response[domain.Project], error) {
	return run(ctx, func(resp *response.Response[domain.Project]) usecase.UseCase {
		return usecase.NewCreateProject(c.projects, c.resources, project, setup, c.log, resp)
	}), nil
}

func (c *Controller) DeleteProject(ctx context.Context, name string) (*response.Response[domain.Project], error) {
	project, err := c.resolveProject(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := run(ctx, func(resp *response.Response[domain.Project]) usecase.UseCase {
		return usecase.NewDeleteProject(c.projects, project, resp)
	})
	if resp.OK() {
		c.project = nil
	}
	return resp, nil
}

// UpdateProject patches the project called name. After a rename the old name no longer resolves.
func (c *Controller) UpdateProject(ctx context.Context, name string, patch domain.ProjectPatch) (*response.Response[domain.Project], error) {
	project, err := c.resolveProject(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := run(ctx, func(resp *response.Response[domain.Project]) usecase.UseCase {
		return usecase.NewUpdateProject(c.projects, project, patch, c.log, resp)
	})
	if resp.OK() {
		updated := resp.Data
		c.project = &updated
	}
	return resp, nil
}

// CloneProject creates target as a copy of the project called source.
func (c *Controller) CloneProject(ctx context.Context, source string, target domain.Project, opts usecase.MetadataOptions) (*response.Response[domain.Project], error) {
	project, err := c.resolveProject(ctx, source)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Project]) usecase.UseCase {
		return usecase.NewCloneProject(c.projects, c.resources, project, target, opts, c.log, resp)
	}), nil
}

func (c *Controller) PrepareExport(ctx context.Context, projectName string, opts usecase.ExportOptions) (*response.Response[domain.Export], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Export]) usecase.UseCase {
		return usecase.NewPrepareExport(repository.NewExports(c.service, project), repository.NewFolders(c.service, project), opts, resp)
	}), nil
}
