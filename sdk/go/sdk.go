// Package annotatesdk is the public Go API for the annotation platform. Each function
// resolves a "project/folder" path, runs one controller operation and folds the
// operation's reported errors into a single error.
package annotatesdk

import (
	"context"
	"os"
	"path/filepath"

	"annoctl/internal/app"
	"annoctl/internal/controller"
	"annoctl/internal/domain"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

// Client is not safe for concurrent use; give each goroutine its own.
type Client struct {
	c *controller.Controller
}

func New(c *controller.Controller) *Client {
	return &Client{c: c}
}

// FromConfig builds a client from the config file and overrides in opts.
func FromConfig(opts app.Options) (*Client, error) {
	cfg, err := app.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	c, err := app.NewController(cfg, app.NewLogger(cfg, opts.LogFormat, os.Stderr))
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

func (s *Client) Controller() *controller.Controller { return s.c }

// unwrap collapses a controller call into a value and a single error.
func unwrap[T any](resp *response.Response[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Data, resp.Err()
}

func (s *Client) SearchProjects(ctx context.Context, name string, exact bool) ([]domain.Project, error) {
	return unwrap(s.c.SearchProjects(ctx, name, exact))
}

func (s *Client) CreateProject(ctx context.Context, name, description string, projectType domain.ProjectType) (domain.Project, error) {
	return unwrap(s.c.CreateProject(ctx, domain.Project{Name: name, Description: description, Type: projectType}, usecase.ProjectSetup{}))
}

// CreateProjectFromMetadata creates a project along with the settings, classes,
// workflow and contributors carried in meta.
func (s *Client) CreateProjectFromMetadata(ctx context.Context, meta domain.ProjectMetadata) (domain.Project, error) {
	setup := usecase.ProjectSetup{
		Settings:  meta.Settings,
		Classes:   meta.AnnotationClasses,
		Workflows: meta.Workflows,
	}
	for _, u := range meta.Contributors {
		setup.Contributors = append(setup.Contributors, domain.ProjectContributor{UserID: u.ID, Role: u.Role})
	}
	return unwrap(s.c.CreateProject(ctx, meta.Project, setup))
}

func (s *Client) GetProjectMetadata(ctx context.Context, name string, opts usecase.MetadataOptions) (domain.ProjectMetadata, error) {
	return unwrap(s.c.GetProjectMetadata(ctx, name, opts))
}

func (s *Client) CloneProject(ctx context.Context, source string, target domain.Project, opts usecase.MetadataOptions) (domain.Project, error) {
	return unwrap(s.c.CloneProject(ctx, source, target, opts))
}

func (s *Client) RenameProject(ctx context.Context, name, newName string) (domain.Project, error) {
	return unwrap(s.c.UpdateProject(ctx, name, domain.ProjectPatch{Name: &newName}))
}

func (s *Client) DeleteProject(ctx context.Context, name string) error {
	_, err := unwrap(s.c.DeleteProject(ctx, name))
	return err
}

func (s *Client) CreateFolder(ctx context.Context, project, name string) (domain.Folder, error) {
	return unwrap(s.c.CreateFolder(ctx, project, name))
}

func (s *Client) GetFolder(ctx context.Context, path string) (domain.Folder, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Folder{}, err
	}
	return unwrap(s.c.GetFolder(ctx, project, folder))
}

func (s *Client) SearchFolders(ctx context.Context, project, name string, includeRoot bool) ([]domain.Folder, error) {
	return unwrap(s.c.SearchFolders(ctx, project, name, includeRoot))
}

// DeleteFolders returns the names that were deleted.
func (s *Client) DeleteFolders(ctx context.Context, project string, names []string) ([]string, error) {
	return unwrap(s.c.DeleteFolders(ctx, project, names))
}

func (s *Client) RenameFolder(ctx context.Context, path, newName string) (domain.Folder, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Folder{}, err
	}
	return unwrap(s.c.UpdateFolder(ctx, project, folder, domain.FolderPatch{Name: &newName}))
}

func (s *Client) SearchImages(ctx context.Context, path string, filter usecase.ImageFilter) ([]domain.Image, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return nil, err
	}
	return unwrap(s.c.SearchImages(ctx, project, folder, filter))
}

func (s *Client) GetImageMetadata(ctx context.Context, path, image string) (domain.Image, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Image{}, err
	}
	return unwrap(s.c.GetImage(ctx, project, folder, image))
}

func (s *Client) SetImageAnnotationStatus(ctx context.Context, path, image string, status domain.AnnotationStatus) (domain.Image, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Image{}, err
	}
	return unwrap(s.c.UpdateImage(ctx, project, folder, image, domain.ImagePatch{AnnotationStatus: &status}))
}

func (s *Client) PinImage(ctx context.Context, path, image string, pin bool) (domain.Image, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Image{}, err
	}
	return unwrap(s.c.UpdateImage(ctx, project, folder, image, domain.ImagePatch{IsPinned: &pin}))
}

// UploadImages stores and registers sources. Items that were not uploaded, other
// than duplicates, make the returned error non-nil alongside the result.
func (s *Client) UploadImages(ctx context.Context, path string, sources []domain.ImageSource, opts domain.UploadOptions) (domain.AttachResult, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.AttachResult{}, err
	}
	return unwrap(s.c.UploadImages(ctx, project, folder, sources, opts))
}

func (s *Client) UploadImagesFromFolder(ctx context.Context, path, dir string, folderOpts FolderOptions, opts domain.UploadOptions) (domain.AttachResult, error) {
	sources, err := ReadImageFolder(dir, folderOpts)
	if err != nil {
		return domain.AttachResult{}, err
	}
	return s.UploadImages(ctx, path, sources, opts)
}

// AttachURLs registers externally hosted files listed in a name,url CSV.
// A zero status leaves the platform default.
func (s *Client) AttachURLs(ctx context.Context, path, csvPath string, status domain.AnnotationStatus) (domain.AttachResult, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.AttachResult{}, err
	}
	attachments, err := readAttachmentsFile(csvPath)
	if err != nil {
		return domain.AttachResult{}, err
	}
	return unwrap(s.c.AttachURLs(ctx, project, folder, attachments, domain.UploadOptions{AnnotationStatus: status}))
}

func (s *Client) AttachImageURLs(ctx context.Context, path, csvPath string, status domain.AnnotationStatus) (domain.AttachResult, error) {
	return s.AttachURLs(ctx, path, csvPath, status)
}

// AttachVideoURLs registers video URLs; the platform treats them like image attachments.
func (s *Client) AttachVideoURLs(ctx context.Context, path, csvPath string, status domain.AnnotationStatus) (domain.AttachResult, error) {
	return s.AttachURLs(ctx, path, csvPath, status)
}

// DownloadImage writes the image into dir and returns the written file path.
func (s *Client) DownloadImage(ctx context.Context, path, image, dir string, variant domain.ImageVariant) (string, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return "", err
	}
	img, err := unwrap(s.c.DownloadImage(ctx, project, folder, image, variant))
	if err != nil {
		return "", err
	}
	return writeDownload(dir, img)
}

func (s *Client) DownloadImageFromPublicURL(ctx context.Context, rawURL, name, dir string) (string, error) {
	img, err := unwrap(s.c.DownloadImageFromPublicURL(ctx, rawURL, name))
	if err != nil {
		return "", err
	}
	return writeDownload(dir, img)
}

func writeDownload(dir string, img domain.DownloadedImage) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(dir, filepath.Base(img.Name))
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

func (s *Client) UploadAnnotations(ctx context.Context, path string, files []domain.AnnotationFile, pre bool) (domain.AnnotationUploadResult, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.AnnotationUploadResult{}, err
	}
	return unwrap(s.c.UploadAnnotations(ctx, project, folder, files, pre))
}

func (s *Client) UploadAnnotationsFromFolder(ctx context.Context, path, dir string, pre bool) (domain.AnnotationUploadResult, error) {
	files, err := ReadAnnotationFolder(dir)
	if err != nil {
		return domain.AnnotationUploadResult{}, err
	}
	return s.UploadAnnotations(ctx, path, files, pre)
}

// CopyImageAnnotationClasses copies annotations between images given as project/folder paths.
func (s *Client) CopyImageAnnotationClasses(ctx context.Context, fromPath, fromImage, toPath, toImage string) (domain.Image, error) {
	fromProject, fromFolder, err := SplitProjectPath(fromPath)
	if err != nil {
		return domain.Image{}, err
	}
	toProject, toFolder, err := SplitProjectPath(toPath)
	if err != nil {
		return domain.Image{}, err
	}
	return unwrap(s.c.CopyImageAnnotationClasses(ctx,
		controller.ImageLocation{Project: fromProject, Folder: fromFolder, Image: fromImage},
		controller.ImageLocation{Project: toProject, Folder: toFolder, Image: toImage},
	))
}

func (s *Client) CreateAnnotationClasses(ctx context.Context, project string, classes []domain.AnnotationClass) ([]domain.AnnotationClass, error) {
	return unwrap(s.c.CreateAnnotationClasses(ctx, project, classes))
}

func (s *Client) SearchAnnotationClasses(ctx context.Context, project, prefix string) ([]domain.AnnotationClass, error) {
	return unwrap(s.c.SearchAnnotationClasses(ctx, project, prefix))
}

// PrepareExport starts an export. A path naming a folder limits the export to it.
func (s *Client) PrepareExport(ctx context.Context, path string, opts usecase.ExportOptions) (domain.Export, error) {
	project, folder, err := SplitProjectPath(path)
	if err != nil {
		return domain.Export{}, err
	}
	if folder != "" {
		opts.Folders = []string{folder}
	}
	return unwrap(s.c.PrepareExport(ctx, project, opts))
}

func (s *Client) GetTeam(ctx context.Context) (domain.Team, error) {
	return unwrap(s.c.GetTeam(ctx))
}

func (s *Client) InviteContributor(ctx context.Context, email string, admin bool) (domain.Invitation, error) {
	return unwrap(s.c.InviteContributor(ctx, email, admin))
}

func (s *Client) DeleteContributorInvitation(ctx context.Context, email string) error {
	_, err := unwrap(s.c.DeleteContributorInvitation(ctx, email))
	return err
}

func (s *Client) SearchTeamContributors(ctx context.Context, filter usecase.ContributorFilter) ([]domain.User, error) {
	return unwrap(s.c.SearchTeamContributors(ctx, filter))
}
