// Package backend talks to the annotation platform's REST API.
package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"annoctl/internal/domain"
)

// Service is the set of remote calls the repositories depend on. Entity payloads
// are returned undecoded; mapping them to entities is the repositories' job.
type Service interface {
	SearchProjects(ctx context.Context, query url.Values) (json.RawMessage, error)
	GetProject(ctx context.Context, teamID, projectID int) (json.RawMessage, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (json.RawMessage, error)
	UpdateProject(ctx context.Context, teamID, projectID int, req UpdateProjectRequest) (json.RawMessage, error)
	DeleteProject(ctx context.Context, teamID, projectID int) error

	GetProjectSettings(ctx context.Context, teamID, projectID int) (json.RawMessage, error)
	SetProjectSettings(ctx context.Context, teamID, projectID int, req SettingsRequest) (json.RawMessage, error)
	GetProjectWorkflows(ctx context.Context, teamID, projectID int) (json.RawMessage, error)
	SetProjectWorkflows(ctx context.Context, teamID, projectID int, req WorkflowsRequest) (json.RawMessage, error)
	GetProjectContributors(ctx context.Context, teamID, projectID int) (json.RawMessage, error)
	ShareProject(ctx context.Context, teamID, projectID int, req ShareProjectRequest) error

	SearchFolders(ctx context.Context, query url.Values) (json.RawMessage, error)
	CreateFolder(ctx context.Context, req CreateFolderRequest) (json.RawMessage, error)
	UpdateFolder(ctx context.Context, teamID, projectID, folderID int, req UpdateFolderRequest) (json.RawMessage, error)
	DeleteFolders(ctx context.Context, req DeleteFoldersRequest) error

	SearchImages(ctx context.Context, query url.Values) (json.RawMessage, error)
	GetBulkImages(ctx context.Context, req ImageNamesRequest) (json.RawMessage, error)
	UpdateImage(ctx context.Context, teamID, projectID, imageID int, req UpdateImageRequest) (json.RawMessage, error)
	DeleteImage(ctx context.Context, teamID, projectID, imageID int) error
	GetDuplicatedImages(ctx context.Context, req ImageNamesRequest) ([]string, error)
	AttachFiles(ctx context.Context, req AttachFilesRequest) (AttachFilesResponse, error)
	GetUploadAuth(ctx context.Context, teamID, projectID, folderID int) (json.RawMessage, error)
	GetImageDownloadURL(ctx context.Context, teamID, projectID, imageID int, variant domain.ImageVariant) (DownloadURLResponse, error)

	SearchAnnotationClasses(ctx context.Context, query url.Values) (json.RawMessage, error)
	CreateAnnotationClasses(ctx context.Context, req CreateClassesRequest) (json.RawMessage, error)
	DeleteAnnotationClass(ctx context.Context, teamID, projectID, classID int) error

	PrepareExport(ctx context.Context, req PrepareExportRequest) (json.RawMessage, error)

	GetTeam(ctx context.Context, teamID int) (json.RawMessage, error)
	InviteContributor(ctx context.Context, teamID int, req InviteRequest) (json.RawMessage, error)
	DeleteTeamInvitation(ctx context.Context, teamID int, token, email string) error
	SearchTeamContributors(ctx context.Context, teamID int, query url.Values) (json.RawMessage, error)
}

// Downloader fetches arbitrary URLs, such as signed storage links or public image URLs.
type Downloader interface {
	Download(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)
}
