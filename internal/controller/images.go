package controller

import (
	"context"

	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

func (c *Controller) SearchImages(ctx context.Context, projectName, folderName string, filter usecase.ImageFilter) (*response.Response[[]domain.Image], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[[]domain.Image]) usecase.UseCase {
		return usecase.NewSearchImages(repository.NewImages(c.service, project), folder, filter, resp)
	}), nil
}

func (c *Controller) GetImage(ctx context.Context, projectName, folderName, imageName string) (*response.Response[domain.Image], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Image]) usecase.UseCase {
		return usecase.NewGetImage(repository.NewImages(c.service, project), folder, imageName, resp)
	}), nil
}

func (c *Controller) UpdateImage(ctx context.Context, projectName, folderName, imageName string, patch domain.ImagePatch) (*response.Response[domain.Image], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	image, err := c.resolveImage(ctx, project, folder, imageName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.Image]) usecase.UseCase {
		return usecase.NewUpdateImage(repository.NewImages(c.service, project), image, patch, resp)
	}), nil
}

// UploadImageToS3 stores one image in the folder's storage prefix without registering it.
func (c *Controller) UploadImageToS3(ctx context.Context, projectName, folderName string, source domain.ImageSource) (*response.Response[domain.ImageUpload], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	store, err := c.objectStore(ctx, project, folder)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.ImageUpload]) usecase.UseCase {
		return usecase.NewUploadImageToS3(store, folder, source, resp)
	}), nil
}

// UploadImages stores and registers sources. A non-empty opts.ImageQuality is saved
// as the project's editor quality before anything is uploaded.
func (c *Controller) UploadImages(ctx context.Context, projectName, folderName string, sources []domain.ImageSource, opts domain.UploadOptions) (*response.Response[domain.AttachResult], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	store, err := c.objectStore(ctx, project, folder)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.AttachResult]) usecase.UseCase {
		return usecase.NewUploadImages(repository.NewImages(c.service, project), repository.NewProjectSettings(c.service, project), store, folder, sources, opts, c.concurrency, c.log, resp)
	}), nil
}

// AttachURLs registers externally hosted images or videos by URL.
func (c *Controller) AttachURLs(ctx context.Context, projectName, folderName string, attachments []domain.Attachment, opts domain.UploadOptions) (*response.Response[domain.AttachResult], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.AttachResult]) usecase.UseCase {
		return usecase.NewAttachURLs(repository.NewImages(c.service, project), folder, attachments, opts, c.log, resp)
	}), nil
}

func (c *Controller) DownloadImage(ctx context.Context, projectName, folderName, imageName string, variant domain.ImageVariant) (*response.Response[domain.DownloadedImage], error) {
	project, folder, err := c.resolveLocation(ctx, projectName, folderName)
	if err != nil {
		return nil, err
	}
	image, err := c.resolveImage(ctx, project, folder, imageName)
	if err != nil {
		return nil, err
	}
	return run(ctx, func(resp *response.Response[domain.DownloadedImage]) usecase.UseCase {
		return usecase.NewDownloadImage(repository.NewImages(c.service, project), c.downloader, image, variant, resp)
	}), nil
}

func (c *Controller) DownloadImageFromPublicURL(ctx context.Context, rawURL, name string) (*response.Response[domain.DownloadedImage], error) {
	return run(ctx, func(resp *response.Response[domain.DownloadedImage]) usecase.UseCase {
		return usecase.NewDownloadImageFromPublicURL(c.downloader, rawURL, name, resp)
	}), nil
}
