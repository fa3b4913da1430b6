package repository

import (
	"context"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

// Folders is bound to one project; every call is scoped to it.
type Folders struct {
	service backend.Service
	project domain.Project
}

var _ Manageable[domain.Folder] = (*Folders)(nil)

func NewFolders(service backend.Service, project domain.Project) *Folders {
	return &Folders{service: service, project: project}
}

func (r *Folders) scope(cond condition.Condition) condition.Condition {
	return condition.Eq("team_id", r.project.TeamID).
		And(condition.Eq("project_id", r.project.ID)).
		And(cond)
}

func (r *Folders) GetAll(ctx context.Context, cond condition.Condition) ([]domain.Folder, error) {
	raw, err := r.service.SearchFolders(ctx, r.scope(cond).Values())
	if err != nil {
		return nil, err
	}
	return decodeList(raw, FolderFromRecord)
}

func (r *Folders) GetOne(ctx context.Context, cond condition.Condition) (*domain.Folder, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

func (r *Folders) Get(ctx context.Context, id int) (*domain.Folder, error) {
	items, err := r.GetAll(ctx, condition.Condition{})
	if err != nil {
		return nil, err
	}
	return byID(items, id, func(f domain.Folder) int { return f.ID }), nil
}

// Insert creates the folder. The backend may rename it to avoid a collision.
func (r *Folders) Insert(ctx context.Context, f domain.Folder) (domain.Folder, error) {
	raw, err := r.service.CreateFolder(ctx, backend.CreateFolderRequest{
		TeamID:    r.project.TeamID,
		ProjectID: r.project.ID,
		Name:      f.Name,
	})
	if err != nil {
		return domain.Folder{}, err
	}
	return FolderFromRecord(raw)
}

func (r *Folders) Update(ctx context.Context, f domain.Folder) (domain.Folder, error) {
	raw, err := r.service.UpdateFolder(ctx, r.project.TeamID, r.project.ID, f.ID, backend.UpdateFolderRequest{Name: f.Name})
	if err != nil {
		return domain.Folder{}, err
	}
	return FolderFromRecord(raw)
}

func (r *Folders) Delete(ctx context.Context, id int) error {
	return r.service.DeleteFolders(ctx, backend.DeleteFoldersRequest{
		TeamID:    r.project.TeamID,
		ProjectID: r.project.ID,
		FolderIDs: []int{id},
	})
}

func (r *Folders) BulkDelete(ctx context.Context, folders []domain.Folder) (bool, error) {
	if len(folders) == 0 {
		return true, nil
	}
	ids := make([]int, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	err := r.service.DeleteFolders(ctx, backend.DeleteFoldersRequest{
		TeamID:    r.project.TeamID,
		ProjectID: r.project.ID,
		FolderIDs: ids,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
