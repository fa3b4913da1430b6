package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
)

type CreateFolder struct {
	folders repository.Manageable[domain.Folder]
	name    string
	log     *slog.Logger
	resp    *response.Response[domain.Folder]
}

func NewCreateFolder(folders repository.Manageable[domain.Folder], name string, log *slog.Logger, resp *response.Response[domain.Folder]) *CreateFolder {
	return &CreateFolder{folders: folders, name: name, log: log, resp: resp}
}

func (u *CreateFolder) Execute(ctx context.Context) {
	name, changed := domain.SanitizeName(u.name)
	if changed {
		u.log.Warn("folder name has special characters; replaced with underscores", "name", u.name, "new_name", name)
	}
	if err := domain.ValidateFolderName(name); err != nil {
		u.resp.Report(err)
		return
	}
	created, err := u.folders.Insert(ctx, domain.Folder{Name: name})
	if err != nil {
		u.resp.Report(fmt.Errorf("create folder %q: %w", name, err))
		return
	}
	if created.Name != name {
		u.log.Warn("created folder has a different name than requested", "requested", name, "created", created.Name)
	}
	u.resp.SetData(created)
}

type GetFolder struct {
	folders repository.ReadOnly[domain.Folder]
	name    string
	resp    *response.Response[domain.Folder]
}

func NewGetFolder(folders repository.ReadOnly[domain.Folder], name string, resp *response.Response[domain.Folder]) *GetFolder {
	return &GetFolder{folders: folders, name: name, resp: resp}
}

func (u *GetFolder) Execute(ctx context.Context) {
	items, err := u.folders.GetAll(ctx, condition.Eq("name", u.name))
	if err != nil {
		u.resp.Report(fmt.Errorf("get folder %q: %w", u.name, err))
		return
	}
	matches := exactName(items, u.name, func(f domain.Folder) string { return f.Name })
	switch len(matches) {
	case 0:
		u.resp.Report(&domain.NotFoundError{Kind: "folder", Name: u.name})
	case 1:
		u.resp.SetData(matches[0])
	default:
		u.resp.Report(&domain.DuplicateNameError{Kind: "folder", Name: u.name, Count: len(matches)})
	}
}

type SearchFolders struct {
	folders     repository.ReadOnly[domain.Folder]
	name        string
	includeRoot bool
	resp        *response.Response[[]domain.Folder]
}

// NewSearchFolders lists the project's folders whose name contains name (all when empty).
func NewSearchFolders(folders repository.ReadOnly[domain.Folder], name string, includeRoot bool, resp *response.Response[[]domain.Folder]) *SearchFolders {
	return &SearchFolders{folders: folders, name: name, includeRoot: includeRoot, resp: resp}
}

func (u *SearchFolders) Execute(ctx context.Context) {
	var cond condition.Condition
	if u.name != "" {
		cond = condition.Eq("name", u.name)
	}
	items, err := u.folders.GetAll(ctx, cond)
	if err != nil {
		u.resp.Report(fmt.Errorf("search folders: %w", err))
		return
	}
	out := make([]domain.Folder, 0, len(items))
	for _, f := range items {
		if f.IsRoot() && !u.includeRoot {
			continue
		}
		out = append(out, f)
	}
	u.resp.SetData(out)
}

type DeleteFolders struct {
	folders repository.Manageable[domain.Folder]
	names   []string
	resp    *response.Response[[]string]
}

func NewDeleteFolders(folders repository.Manageable[domain.Folder], names []string, resp *response.Response[[]string]) *DeleteFolders {
	return &DeleteFolders{folders: folders, names: names, resp: resp}
}

// Execute deletes the named folders that exist and reports each name that does not.
// The root folder cannot be deleted.
func (u *DeleteFolders) Execute(ctx context.Context) {
	all, err := u.folders.GetAll(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("list folders: %w", err))
		return
	}
	byName := map[string][]domain.Folder{}
	for _, f := range all {
		byName[f.Name] = append(byName[f.Name], f)
	}
	var targets []domain.Folder
	deleted := []string{}
	seen := make(map[string]bool, len(u.names))
	for _, name := range u.names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if name == domain.RootFolderName {
			u.resp.Report(&domain.ValidationError{Message: "the root folder cannot be deleted"})
			continue
		}
		found, ok := byName[name]
		if !ok {
			u.resp.Report(&domain.NotFoundError{Kind: "folder", Name: name})
			continue
		}
		targets = append(targets, found...)
		deleted = append(deleted, name)
	}
	if len(targets) == 0 {
		u.resp.SetData(deleted)
		return
	}
	if _, err := u.folders.BulkDelete(ctx, targets); err != nil {
		u.resp.Report(fmt.Errorf("delete folders: %w", err))
		u.resp.SetData([]string{})
		return
	}
	u.resp.SetData(deleted)
}

type UpdateFolder struct {
	folders repository.Manageable[domain.Folder]
	folder  domain.Folder
	patch   domain.FolderPatch
	resp    *response.Response[domain.Folder]
}

func NewUpdateFolder(folders repository.Manageable[domain.Folder], folder domain.Folder, patch domain.FolderPatch, resp *response.Response[domain.Folder]) *UpdateFolder {
	return &UpdateFolder{folders: folders, folder: folder, patch: patch, resp: resp}
}

func (u *UpdateFolder) Execute(ctx context.Context) {
	if u.folder.IsRoot() {
		u.resp.Report(&domain.ValidationError{Message: "the root folder cannot be renamed"})
		return
	}
	if u.patch.Name != nil {
		name, _ := domain.SanitizeName(*u.patch.Name)
		if err := domain.ValidateFolderName(name); err != nil {
			u.resp.Report(err)
			return
		}
		u.patch.Name = &name
	}
	updated := u.folder
	u.patch.Apply(&updated)
	saved, err := u.folders.Update(ctx, updated)
	if err != nil {
		u.resp.Report(fmt.Errorf("update folder %q: %w", u.folder.Name, err))
		return
	}
	u.resp.SetData(saved)
}
