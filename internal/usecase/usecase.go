// Package usecase holds one type per platform operation. A use case is built with
// everything it needs, runs once, and writes its outcome into the Response it was given.
package usecase

import (
	"context"

	"annoctl/internal/backend"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
)

// UseCase is the single shape every operation takes.
type UseCase interface {
	Execute(ctx context.Context)
}

const (
	// AttachChunkSize bounds one image registration call.
	AttachChunkSize = 500
	// AnnotationChunkSize bounds one annotation upload round.
	AnnotationChunkSize = 10
	// DefaultUploadConcurrency bounds parallel object uploads.
	DefaultUploadConcurrency = 8
)

type SettingsStore interface {
	repository.ReadOnly[domain.ProjectSetting]
	Save(ctx context.Context, settings []domain.ProjectSetting) ([]domain.ProjectSetting, error)
}

type WorkflowStore interface {
	repository.ReadOnly[domain.Workflow]
	Save(ctx context.Context, steps []domain.Workflow) ([]domain.Workflow, error)
}

type ClassStore interface {
	repository.Manageable[domain.AnnotationClass]
	InsertMany(ctx context.Context, classes []domain.AnnotationClass) ([]domain.AnnotationClass, error)
}

type ContributorStore interface {
	repository.ReadOnly[domain.User]
	Share(ctx context.Context, c domain.ProjectContributor) error
}

// ProjectResources are the stores bound to one project.
type ProjectResources struct {
	Settings     SettingsStore
	Classes      ClassStore
	Workflows    WorkflowStore
	Contributors ContributorStore
}

// ResourceFactory binds ProjectResources to a project, typically one just created.
type ResourceFactory func(project domain.Project) ProjectResources

// ImageStore is the image gateway used by upload, attach and annotation use cases.
type ImageStore interface {
	repository.Manageable[domain.Image]
	GetBulk(ctx context.Context, folderID int, names []string) ([]domain.Image, error)
	Duplicates(ctx context.Context, folderID int, names []string) ([]string, error)
	Attach(ctx context.Context, folderID int, state domain.UploadState, files []domain.ImageUpload) (backend.AttachFilesResponse, error)
	UploadAuth(ctx context.Context, folderID int) (domain.UploadAuth, error)
	DownloadURL(ctx context.Context, imageID int, variant domain.ImageVariant) (backend.DownloadURLResponse, error)
}

// ObjectStore is the object-storage side of an upload session.
type ObjectStore interface {
	Key(folder domain.Folder, name string) string
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
