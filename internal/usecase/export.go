package usecase

import (
	"context"
	"fmt"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
)

type ExportStore interface {
	Insert(ctx context.Context, e domain.Export) (domain.Export, error)
}

// ExportOptions selects what goes into an export. No folders means every folder;
// no statuses means every status.
type ExportOptions struct {
	Folders            []string
	AnnotationStatuses []domain.AnnotationStatus
	IncludeFuse        bool
	OnlyPinned         bool
}

type PrepareExport struct {
	exports ExportStore
	folders repository.ReadOnly[domain.Folder]
	opts    ExportOptions
	resp    *response.Response[domain.Export]
}

func NewPrepareExport(exports ExportStore, folders repository.ReadOnly[domain.Folder], opts ExportOptions, resp *response.Response[domain.Export]) *PrepareExport {
	return &PrepareExport{exports: exports, folders: folders, opts: opts, resp: resp}
}

func (u *PrepareExport) Execute(ctx context.Context) {
	for _, s := range u.opts.AnnotationStatuses {
		if !s.Valid() {
			u.resp.Report(&domain.ValidationError{Message: fmt.Sprintf("unknown annotation status %d", s)})
			return
		}
	}
	if len(u.opts.Folders) > 0 {
		all, err := u.folders.GetAll(ctx, condition.Condition{})
		if err != nil {
			u.resp.Report(fmt.Errorf("list folders: %w", err))
			return
		}
		have := map[string]bool{}
		for _, f := range all {
			have[f.Name] = true
		}
		for _, name := range u.opts.Folders {
			if !have[name] {
				u.resp.Report(&domain.NotFoundError{Kind: "folder", Name: name})
				return
			}
		}
	}
	exp, err := u.exports.Insert(ctx, domain.Export{
		Folders:            u.opts.Folders,
		AnnotationStatuses: u.opts.AnnotationStatuses,
		IncludeFuse:        u.opts.IncludeFuse,
		OnlyPinned:         u.opts.OnlyPinned,
	})
	if err != nil {
		u.resp.Report(fmt.Errorf("prepare export: %w", err))
		return
	}
	u.resp.SetData(exp)
}
