package controller

import (
	"context"

	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

func (c *Controller) CreateAnnotationClasses(ctx context.Context, projectName string, classes []domain.AnnotationClass) (*response.Response[[]domain.AnnotationClass], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[[]domain.AnnotationClass]) usecase.UseCase {
		return usecase.NewCreateAnnotationClasses(repository.NewAnnotationClasses(c.service, project), classes, c.log, resp)
	}), nil
}

func (c *Controller) SearchAnnotationClasses(ctx context.Context, projectName, prefix string) (*response.Response[[]domain.AnnotationClass], error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[[]domain.AnnotationClass]) usecase.UseCase {
		return usecase.NewSearchAnnotationClasses(repository.NewAnnotationClasses(c.service, project), prefix, resp)
	}), nil
}

// UploadAnnotations stores annotation JSON next to the images it names. pre selects pre-annotations.
func (c *Controller) UploadAnnotations(ctx context.Context, projectName, folderName string, files []domain.AnnotationFile, pre bool) (*response.Response[domain.AnnotationUploadResult], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	store, err := c.objectStore(ctx, project, folder)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.AnnotationUploadResult]) usecase.UseCase {
		return usecase.NewUploadAnnotations(repository.NewImages(c.service, project), store, folder, files, pre, c.log, resp)
	}), nil
}

// ImageLocation names an image by project, folder and image name.
type ImageLocation struct {
	Project string
	Folder  string
	Image   string
}

// CopyImageAnnotationClasses copies an image's annotations into another image, usually in
// another project, creating the classes the target lacks.
func (c *Controller) CopyImageAnnotationClasses(ctx context.Context, from, to ImageLocation) (*response.Response[domain.Image], error) {
	srcProject, srcFolder, err := c.resolveLocation(ctx, from.Project, from.Folder)
	if err != nil {
		return nil, err
	}
	dstProject, dstFolder, err := c.resolveLocation(ctx, to.Project, to.Folder)
	if err != nil {
		return nil, err
	}
	store, err := c.objectStore(ctx, srcProject, srcFolder)
	if err != nil {
		return nil, err
	}
	src := usecase.ImageRef{
		Images:  repository.NewImages(c.service, srcProject),
		Classes: repository.NewAnnotationClasses(c.service, srcProject),
		Folder:  srcFolder,
		Name:    from.Image,
	}
	dst := usecase.ImageRef{
		Images:  repository.NewImages(c.service, dstProject),
		Classes: repository.NewAnnotationClasses(c.service, dstProject),
		Folder:  dstFolder,
		Name:    to.Image,
	}
	return run(ctx, func(resp *response.Response[domain.Image]) usecase.UseCase {
		return usecase.NewCopyImageAnnotationClasses(src, dst, store, c.log, resp)
	}), nil
}
