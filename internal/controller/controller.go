// Package controller is the single entry point the SDK and CLI call. It turns names
// into entities, wires a use case with project-scoped repositories, runs it and hands
// back the Response.
//
// A Controller caches the last resolved project and the first storage credential set
// it obtains. It is not safe for concurrent use; give each session its own.
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/config"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/storage"
	"annoctl/internal/usecase"
)

type Controller struct {
	service     backend.Service
	teamID      int
	log         *slog.Logger
	stores      storage.Factory
	downloader  backend.Downloader
	concurrency int

	projects *repository.Projects
	project  *domain.Project
	objects  *repository.S3Repository
}

type Option func(*Controller)

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithStoreFactory replaces the S3 object store, e.g. with an in-memory one.
func WithStoreFactory(f storage.Factory) Option {
	return func(c *Controller) { c.stores = f }
}

func WithDownloader(d backend.Downloader) Option {
	return func(c *Controller) { c.downloader = d }
}

func WithUploadConcurrency(n int) Option {
	return func(c *Controller) { c.concurrency = n }
}

// New fails when the token is missing or carries no team id.
func New(service backend.Service, token config.Token, opts ...Option) (*Controller, error) {
	if service == nil {
		return nil, &domain.PreconditionError{Message: "backend service is required"}
	}
	teamID, err := token.TeamID()
	if err != nil {
		return nil, err
	}
	c := &Controller{
		service:     service,
		teamID:      teamID,
		log:         slog.Default(),
		stores:      storage.S3Factory(""),
		concurrency: usecase.DefaultUploadConcurrency,
	}
	if d, ok := service.(backend.Downloader); ok {
		c.downloader = d
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.downloader == nil {
		c.downloader = backend.New("", "", true)
	}
	c.projects = repository.NewProjects(service, teamID)
	return c, nil
}

func (c *Controller) TeamID() int { return c.teamID }

func run[T any](ctx context.Context, build func(resp *response.Response[T]) usecase.UseCase) *response.Response[T] {
	resp := response.New[T]()
	build(resp).Execute(ctx)
	return resp
}

// resolveProject resolves name within the team. The last project resolved is cached until
// a different name is asked for.
func (c *Controller) resolveProject(ctx context.Context, name string) (domain.Project, error) {
	if c.project != nil && c.project.Name == name {
		return *c.project, nil
	}
	if name == "" {
		return domain.Project{}, &domain.ValidationError{Message: "project name is required"}
	}
	items, err := c.projects.GetAll(ctx, condition.Eq("name", name))
	if err != nil {
		return domain.Project{}, fmt.Errorf("resolve project %q: %w", name, err)
	}
	var matches []domain.Project
	for _, p := range items {
		if p.Name == name {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Project{}, &domain.NotFoundError{Kind: "project", Name: name}
	case 1:
		p := matches[0]
		c.project = &p
		c.log.Debug("resolved project", "name", name, "id", p.ID)
		return p, nil
	default:
		return domain.Project{}, &domain.DuplicateNameError{Kind: "project", Name: name, Count: len(matches)}
	}
}

// resolveFolder resolves name within project. An empty name is the root folder.
func (c *Controller) resolveFolder(ctx context.Context, project domain.Project, name string) (domain.Folder, error) {
	if name == "" {
		name = domain.RootFolderName
	}
	items, err := repository.NewFolders(c.service, project).GetAll(ctx, condition.Eq("name", name))
	if err != nil {
		return domain.Folder{}, fmt.Errorf("resolve folder %q: %w", name, err)
	}
	var matches []domain.Folder
	for _, f := range items {
		if f.Name == name {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Folder{}, &domain.NotFoundError{Kind: "folder", Name: name}
	case 1:
		return matches[0], nil
	default:
		return domain.Folder{}, &domain.DuplicateNameError{Kind: "folder", Name: name, Count: len(matches)}
	}
}

func (c *Controller) resolveLocation(ctx context.Context, projectName, folderName string) (domain.Project, domain.Folder, error) {
	project, err := c.resolveProject(ctx, projectName)
	if err != nil {
		return domain.Project{}, domain.Folder{}, err
	}
	folder, err := c.resolveFolder(ctx, project, folderName)
	if err != nil {
		return domain.Project{}, domain.Folder{}, err
	}
	return project, folder, nil
}

func (c *Controller) resolveImage(ctx context.Context, project domain.Project, folder domain.Folder, name string) (domain.Image, error) {
	found, err := repository.NewImages(c.service, project).GetBulk(ctx, folder.ID, []string{name})
	if err != nil {
		return domain.Image{}, fmt.Errorf("resolve image %q: %w", name, err)
	}
	for _, img := range found {
		if img.Name == name {
			return img, nil
		}
	}
	return domain.Image{}, &domain.NotFoundError{Kind: "image", Name: name}
}

func (c *Controller) resources(project domain.Project) usecase.ProjectResources {
	return usecase.ProjectResources{
		Settings:     repository.NewProjectSettings(c.service, project),
		Classes:      repository.NewAnnotationClasses(c.service, project),
		Workflows:    repository.NewWorkflows(c.service, project),
		Contributors: repository.NewProjectContributors(c.service, project),
	}
}

// objectStore returns the storage repository, fetching credentials through folder on
// first use only. The credentials are never refreshed, so a session outliving them
// needs a new Controller.
func (c *Controller) objectStore(ctx context.Context, project domain.Project, folder domain.Folder) (*repository.S3Repository, error) {
	if c.objects != nil {
		return c.objects, nil
	}
	auth, err := repository.NewImages(c.service, project).UploadAuth(ctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("get storage credentials: %w", err)
	}
	repo, err := repository.NewS3Repository(ctx, c.stores, auth)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	c.log.Debug("opened object store", "bucket", repo.Bucket())
	c.objects = repo
	return repo, nil
}
