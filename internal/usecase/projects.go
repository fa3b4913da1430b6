package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
)

type SearchProjects struct {
	projects repository.ReadOnly[domain.Project]
	name     string
	exact    bool
	resp     *response.Response[[]domain.Project]
}

// NewSearchProjects finds projects whose name contains name, or equals it when exact is set.
func NewSearchProjects(projects repository.ReadOnly[domain.Project], name string, exact bool, resp *response.Response[[]domain.Project]) *SearchProjects {
	return &SearchProjects{projects: projects, name: name, exact: exact, resp: resp}
}

func (u *SearchProjects) Execute(ctx context.Context) {
	var cond condition.Condition
	if u.name != "" {
		cond = condition.Eq("name", u.name)
	}
	items, err := u.projects.GetAll(ctx, cond)
	if err != nil {
		u.resp.Report(fmt.Errorf("search projects: %w", err))
		return
	}
	if u.exact {
		items = exactName(items, u.name, func(p domain.Project) string { return p.Name })
	}
	u.resp.SetData(items)
}

type CreateProject struct {
	projects     repository.Manageable[domain.Project]
	resources    ResourceFactory
	project      domain.Project
	settings     []domain.ProjectSetting
	classes      []domain.AnnotationClass
	workflows    []domain.Workflow
	contributors []domain.ProjectContributor
	log          *slog.Logger
	resp         *response.Response[domain.Project]
}

// ProjectSetup holds the optional resources created along with a project.
type ProjectSetup struct {
	Settings     []domain.ProjectSetting
	Classes      []domain.AnnotationClass
	Workflows    []domain.Workflow
	Contributors []domain.ProjectContributor
}

func NewCreateProject(projects repository.Manageable[domain.Project], resources ResourceFactory, project domain.Project, setup ProjectSetup, log *slog.Logger, resp *response.Response[domain.Project]) *CreateProject {
	return &CreateProject{
		projects:     projects,
		resources:    resources,
		project:      project,
		settings:     setup.Settings,
		classes:      setup.Classes,
		workflows:    setup.Workflows,
		contributors: setup.Contributors,
		log:          log,
		resp:         resp,
	}
}

func (u *CreateProject) Execute(ctx context.Context) {
	if name, changed := domain.SanitizeName(u.project.Name); changed {
		u.log.Warn("project name has special characters; replaced with underscores", "name", u.project.Name, "new_name", name)
		u.project.Name = name
	}
	err := domain.NewProject{Name: u.project.Name, Description: u.project.Description, Type: u.project.Type}.Validate()
	if err != nil {
		u.resp.Report(err)
		return
	}
	existing, err := u.projects.GetAll(ctx, condition.Eq("name", u.project.Name))
	if err != nil {
		u.resp.Report(fmt.Errorf("check project name: %w", err))
		return
	}
	if len(exactName(existing, u.project.Name, func(p domain.Project) string { return p.Name })) > 0 {
		u.resp.Report(fmt.Errorf("project %q already exists: %w", u.project.Name, domain.ErrDuplicateName))
		return
	}
	created, err := u.projects.Insert(ctx, u.project)
	if err != nil {
		u.resp.Report(fmt.Errorf("create project: %w", err))
		return
	}
	u.resp.SetData(created)
	u.log.Info("created project", "name", created.Name, "id", created.ID)

	res := u.resources(created)
	setUpProject(ctx, res, ProjectSetup{
		Settings:     u.settings,
		Classes:      u.classes,
		Workflows:    u.workflows,
		Contributors: u.contributors,
	}, u.log, u.resp.Report)
}

// setUpProject creates settings, classes, workflow and contributors in that order.
// Failures are reported and the remaining steps still run.
func setUpProject(ctx context.Context, res ProjectResources, setup ProjectSetup, log *slog.Logger, report func(error)) {
	if len(setup.Settings) > 0 {
		if _, err := res.Settings.Save(ctx, setup.Settings); err != nil {
			report(fmt.Errorf("set project settings: %w", err))
		}
	}
	classIDs := map[string]int{}
	if len(setup.Classes) > 0 {
		created, err := res.Classes.InsertMany(ctx, setup.Classes)
		if err != nil {
			report(fmt.Errorf("create annotation classes: %w", err))
		}
		for _, c := range created {
			classIDs[c.Name] = c.ID
		}
	}
	if len(setup.Workflows) > 0 {
		steps := make([]domain.Workflow, 0, len(setup.Workflows))
		for _, w := range setup.Workflows {
			id, ok := classIDs[w.ClassName]
			if !ok {
				report(fmt.Errorf("workflow step %d: annotation class %q not created", w.Step, w.ClassName))
				continue
			}
			w.ClassID = id
			steps = append(steps, w)
		}
		if len(steps) > 0 {
			if _, err := res.Workflows.Save(ctx, steps); err != nil {
				report(fmt.Errorf("set project workflow: %w", err))
			}
		}
	}
	for _, c := range setup.Contributors {
		if err := res.Contributors.Share(ctx, c); err != nil {
			report(fmt.Errorf("share project with %s: %w", c.UserID, err))
			continue
		}
		log.Debug("shared project", "user", c.UserID, "role", c.Role.String())
	}
}

type DeleteProject struct {
	projects repository.Manageable[domain.Project]
	project  domain.Project
	resp     *response.Response[domain.Project]
}

func NewDeleteProject(projects repository.Manageable[domain.Project], project domain.Project, resp *response.Response[domain.Project]) *DeleteProject {
	return &DeleteProject{projects: projects, project: project, resp: resp}
}

func (u *DeleteProject) Execute(ctx context.Context) {
	if err := u.projects.Delete(ctx, u.project.ID); err != nil {
		u.resp.Report(fmt.Errorf("delete project %q: %w", u.project.Name, err))
		return
	}
	u.resp.SetData(u.project)
}

type UpdateProject struct {
	projects repository.Manageable[domain.Project]
	project  domain.Project
	patch    domain.ProjectPatch
	log      *slog.Logger
	resp     *response.Response[domain.Project]
}

func NewUpdateProject(projects repository.Manageable[domain.Project], project domain.Project, patch domain.ProjectPatch, log *slog.Logger, resp *response.Response[domain.Project]) *UpdateProject {
	return &UpdateProject{projects: projects, project: project, patch: patch, log: log, resp: resp}
}

func (u *UpdateProject) Execute(ctx context.Context) {
	if u.patch.IsEmpty() {
		u.resp.SetData(u.project)
		return
	}
	if u.patch.Name != nil {
		name, changed := domain.SanitizeName(*u.patch.Name)
		if changed {
			u.log.Warn("project name has special characters; replaced with underscores", "name", *u.patch.Name, "new_name", name)
		}
		if strings.TrimSpace(name) == "" {
			u.resp.Report(&domain.ValidationError{Message: "project name is required"})
			return
		}
		u.patch.Name = &name
		if name != u.project.Name {
			existing, err := u.projects.GetAll(ctx, condition.Eq("name", name))
			if err != nil {
				u.resp.Report(fmt.Errorf("check project name: %w", err))
				return
			}
			if len(exactName(existing, name, func(p domain.Project) string { return p.Name })) > 0 {
				u.resp.Report(fmt.Errorf("project %q already exists: %w", name, domain.ErrDuplicateName))
				return
			}
		}
	}
	updated := u.project
	u.patch.Apply(&updated)
	saved, err := u.projects.Update(ctx, updated)
	if err != nil {
		u.resp.Report(fmt.Errorf("update project %q: %w", u.project.Name, err))
		return
	}
	u.resp.SetData(saved)
}

// MetadataOptions selects which project resources GetProjectMetadata loads.
type MetadataOptions struct {
	Settings          bool
	Workflow          bool
	AnnotationClasses bool
	Contributors      bool
}

type GetProjectMetadata struct {
	project   domain.Project
	resources ProjectResources
	opts      MetadataOptions
	resp      *response.Response[domain.ProjectMetadata]
}

func NewGetProjectMetadata(project domain.Project, resources ProjectResources, opts MetadataOptions, resp *response.Response[domain.ProjectMetadata]) *GetProjectMetadata {
	return &GetProjectMetadata{project: project, resources: resources, opts: opts, resp: resp}
}

func (u *GetProjectMetadata) Execute(ctx context.Context) {
	md, err := loadMetadata(ctx, u.project, u.resources, u.opts)
	if err != nil {
		u.resp.Report(err)
		return
	}
	u.resp.SetData(md)
}

func loadMetadata(ctx context.Context, project domain.Project, res ProjectResources, opts MetadataOptions) (domain.ProjectMetadata, error) {
	md := domain.ProjectMetadata{Project: project}
	var err error
	if opts.Settings {
		if md.Settings, err = res.Settings.GetAll(ctx, condition.Condition{}); err != nil {
			return md, fmt.Errorf("get project settings: %w", err)
		}
	}
	if opts.AnnotationClasses || opts.Workflow {
		if md.AnnotationClasses, err = res.Classes.GetAll(ctx, condition.Condition{}); err != nil {
			return md, fmt.Errorf("get annotation classes: %w", err)
		}
	}
	if opts.Workflow {
		if md.Workflows, err = res.Workflows.GetAll(ctx, condition.Condition{}); err != nil {
			return md, fmt.Errorf("get project workflow: %w", err)
		}
		names := map[int]string{}
		for _, c := range md.AnnotationClasses {
			names[c.ID] = c.Name
		}
		for i := range md.Workflows {
			md.Workflows[i].ClassName = names[md.Workflows[i].ClassID]
		}
		if !opts.AnnotationClasses {
			md.AnnotationClasses = nil
		}
	}
	if opts.Contributors {
		if md.Contributors, err = res.Contributors.GetAll(ctx, condition.Condition{}); err != nil {
			return md, fmt.Errorf("get project contributors: %w", err)
		}
	}
	return md, nil
}

type CloneProject struct {
	projects  repository.Manageable[domain.Project]
	resources ResourceFactory
	source    domain.Project
	target    domain.Project
	opts      MetadataOptions
	log       *slog.Logger
	resp      *response.Response[domain.Project]
}

// NewCloneProject copies source into a new project named target.Name. Resources selected
// by opts are copied; target.Type is always taken from source.
func NewCloneProject(projects repository.Manageable[domain.Project], resources ResourceFactory, source, target domain.Project, opts MetadataOptions, log *slog.Logger, resp *response.Response[domain.Project]) *CloneProject {
	return &CloneProject{projects: projects, resources: resources, source: source, target: target, opts: opts, log: log, resp: resp}
}

func (u *CloneProject) Execute(ctx context.Context) {
	opts := u.opts
	if opts.Workflow {
		opts.AnnotationClasses = true
	}
	md, err := loadMetadata(ctx, u.source, u.resources(u.source), opts)
	if err != nil {
		u.resp.Report(err)
		return
	}
	setup := ProjectSetup{Settings: md.Settings, Classes: md.AnnotationClasses}
	if u.opts.Workflow {
		setup.Workflows = md.Workflows
	}
	for _, c := range md.Contributors {
		setup.Contributors = append(setup.Contributors, domain.ProjectContributor{UserID: c.ID, Role: c.Role})
	}
	target := u.target
	target.Type = u.source.Type
	if target.Description == "" {
		target.Description = u.source.Description
	}
	NewCreateProject(u.projects, u.resources, target, setup, u.log, u.resp).Execute(ctx)
}

func exactName[E any](items []E, name string, nameOf func(E) string) []E {
	out := []E{}
	for _, it := range items {
		if nameOf(it) == name {
			out = append(out, it)
		}
	}
	return out
}
