package repository

import (
	"context"
	"fmt"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

// Images is bound to one project. Folder scoping is per call.
type Images struct {
	service backend.Service
	project domain.Project
}

var _ Manageable[domain.Image] = (*Images)(nil)

func NewImages(service backend.Service, project domain.Project) *Images {
	return &Images{service: service, project: project}
}

func (r *Images) scope(cond condition.Condition) condition.Condition {
	return condition.Eq("team_id", r.project.TeamID).
		And(condition.Eq("project_id", r.project.ID)).
		And(cond)
}

func (r *Images) GetAll(ctx context.Context, cond condition.Condition) ([]domain.Image, error) {
	raw, err := r.service.SearchImages(ctx, r.scope(cond).Values())
	if err != nil {
		return nil, err
	}
	return decodeList(raw, ImageFromRecord)
}

func (r *Images) GetOne(ctx context.Context, cond condition.Condition) (*domain.Image, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

// Get searches the whole project, so it costs one listing.
func (r *Images) Get(ctx context.Context, id int) (*domain.Image, error) {
	items, err := r.GetAll(ctx, condition.Condition{})
	if err != nil {
		return nil, err
	}
	return byID(items, id, func(i domain.Image) int { return i.ID }), nil
}

// GetBulk returns the images of folderID whose names are in names. Missing names are absent.
func (r *Images) GetBulk(ctx context.Context, folderID int, names []string) ([]domain.Image, error) {
	raw, err := r.service.GetBulkImages(ctx, r.names(folderID, names))
	if err != nil {
		return nil, err
	}
	return decodeList(raw, ImageFromRecord)
}

// Duplicates returns which of names already exist in folderID.
func (r *Images) Duplicates(ctx context.Context, folderID int, names []string) ([]string, error) {
	return r.service.GetDuplicatedImages(ctx, r.names(folderID, names))
}

// Attach registers objects as images of folderID.
func (r *Images) Attach(ctx context.Context, folderID int, state domain.UploadState, files []domain.ImageUpload) (backend.AttachFilesResponse, error) {
	return r.service.AttachFiles(ctx, backend.AttachFilesRequest{
		TeamID:      r.project.TeamID,
		ProjectID:   r.project.ID,
		FolderID:    folderID,
		UploadState: state,
		Files:       files,
	})
}

// UploadAuth asks the backend for a fresh storage credential set for folderID.
func (r *Images) UploadAuth(ctx context.Context, folderID int) (domain.UploadAuth, error) {
	raw, err := r.service.GetUploadAuth(ctx, r.project.TeamID, r.project.ID, folderID)
	if err != nil {
		return domain.UploadAuth{}, err
	}
	return UploadAuthFromRecord(raw)
}

func (r *Images) DownloadURL(ctx context.Context, imageID int, variant domain.ImageVariant) (backend.DownloadURLResponse, error) {
	return r.service.GetImageDownloadURL(ctx, r.project.TeamID, r.project.ID, imageID, variant)
}

// Insert registers a single already-uploaded image.
func (r *Images) Insert(ctx context.Context, img domain.Image) (domain.Image, error) {
	resp, err := r.Attach(ctx, img.FolderID, domain.UploadStateBasic, []domain.ImageUpload{{Name: img.Name, Path: img.Path, Meta: img.Meta}})
	if err != nil {
		return domain.Image{}, err
	}
	if len(resp.Attached) == 0 {
		return domain.Image{}, fmt.Errorf("image %q was not registered", img.Name)
	}
	created, err := r.GetBulk(ctx, img.FolderID, []string{img.Name})
	if err != nil {
		return domain.Image{}, err
	}
	if len(created) == 0 {
		return domain.Image{}, &domain.NotFoundError{Kind: "image", Name: img.Name}
	}
	return created[0], nil
}

func (r *Images) Update(ctx context.Context, img domain.Image) (domain.Image, error) {
	raw, err := r.service.UpdateImage(ctx, r.project.TeamID, r.project.ID, img.ID, backend.UpdateImageRequest{
		AnnotationStatus: img.AnnotationStatus,
		IsPinned:         img.IsPinned,
	})
	if err != nil {
		return domain.Image{}, err
	}
	return ImageFromRecord(raw)
}

func (r *Images) Delete(ctx context.Context, id int) error {
	return r.service.DeleteImage(ctx, r.project.TeamID, r.project.ID, id)
}

func (r *Images) BulkDelete(ctx context.Context, images []domain.Image) (bool, error) {
	for _, img := range images {
		if err := r.Delete(ctx, img.ID); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *Images) names(folderID int, names []string) backend.ImageNamesRequest {
	return backend.ImageNamesRequest{
		TeamID:    r.project.TeamID,
		ProjectID: r.project.ID,
		FolderID:  folderID,
		Names:     names,
	}
}
