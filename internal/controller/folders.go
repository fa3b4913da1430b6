package controller

import (
	"context"

	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

func (c *Controller) CreateFolder(ctx context.Context, projectName, folderName string) (*response.Response[domain.Folder], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Folder]) usecase.UseCase {
		return usecase.NewCreateFolder(repository.NewFolders(c.service, project), folderName, c.log, resp)
	}), nil
}

// GetFolder looks folderName up in the project. An empty name is the root folder.
func (c *Controller) GetFolder(ctx context.Context, projectName, folderName string) (*response.Response[domain.Folder], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	if folderName == "" {
		folderName = domain.RootFolderName
	}
	return run(ctx, func(resp *response.Response[domain.Folder]) usecase.UseCase {
		return usecase.NewGetFolder(repository.NewFolders(c.service, project), folderName, resp)
	}), nil
}

func (c *Controller) SearchFolders(ctx context.Context, projectName, name string, includeRoot bool) (*response.Response[[]domain.Folder], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[[]domain.Folder]) usecase.UseCase {
		return usecase.NewSearchFolders(repository.NewFolders(c.service, project), name, includeRoot, resp)
	}), nil
}

// GetProjectFolders lists every folder of the project, root included.
func (c *Controller) GetProjectFolders(ctx context.Context, projectName string) (*response.Response[[]domain.Folder], error) {
	return c.SearchFolders(ctx, projectName, "", true)
}

func (c *Controller) DeleteFolders(ctx context.Context, projectName string, names []string) (*response.Response[[]string], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[[]string]) usecase.UseCase {
		return usecase.NewDeleteFolders(repository.NewFolders(c.service, project), names, resp)
	}), nil
}

func (c *Controller) UpdateFolder(ctx context.Context, projectName, folderName string, patch domain.FolderPatch) (*response.Response[domain.Folder], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Folder]) usecase.UseCase {
		return usecase.NewUpdateFolder(repository.NewFolders(c.service, project), folder, patch, resp)
	}), nil
}
