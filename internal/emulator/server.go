// Package emulator serves a local stand-in for the annotation platform's REST API and
// object storage, backed by SQLite and an in-memory bucket.
package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"annoctl/internal/backend"
	"annoctl/internal/domain"
	"annoctl/internal/storage"
)

const (
	DefaultBasePath   = "/api/v1"
	DefaultBucket     = "annotate-emulator"
	DefaultImageLimit = 50000
)

type Config struct {
	Store    Store
	Blobs    *storage.Memory
	BasePath string
	Bucket   string
	// ImageLimit caps the images of one folder.
	ImageLimit int
	Auth       AuthConfig
	Logger     *slog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"project 12: not found"`
	Details map[string]any `json:"details,omitempty"`
}

type requestKey struct{}
type bodyBytesKey struct{}

type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type server struct {
	store      Store
	bucket     string
	imageLimit int
	log        *slog.Logger
}

type body[T any] struct {
	Body T `json:"body"`
}

func reply[T any](v T) *body[T] { return &body[T]{Body: v} }

// New returns an HTTP handler exposing the emulated API under BasePath and the
// object store under /storage.
func New(cfg Config) (http.Handler, error) {
	if cfg.Store.DB == nil {
		return nil, errors.New("emulator store has no database")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	if cfg.Blobs == nil {
		cfg.Blobs = storage.NewMemory()
	}
	s := &server{store: cfg.Store, bucket: cfg.Bucket, imageLimit: cfg.ImageLimit, log: cfg.Logger}
	if s.bucket == "" {
		s.bucket = DefaultBucket
	}
	if s.imageLimit <= 0 {
		s.imageLimit = DefaultImageLimit
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth, cfg.Store, s.log))
	registerBlobs(router, cfg.Blobs)

	hcfg := huma.DefaultConfig("Annotation platform emulator", "1.0.0")
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	s.registerProjects(group)
	s.registerProjectParts(group)
	s.registerFolders(group)
	s.registerImages(group)
	s.registerClasses(group)
	s.registerTeam(group)
	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message, Details: details}}
}

func (s *server) handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrInvalid):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, ErrConflict):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	}
	s.log.Error("request failed", "err", err)
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestFromContext(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	return r
}

func bodyBytes(ctx context.Context) []byte {
	if buf, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return buf
	}
	return nil
}

var errorStatuses = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusInternalServerError,
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*body[map[string]string], error) {
		return reply(map[string]string{"status": "ok"}), nil
	})
}

type teamQuery struct {
	TeamID int `query:"team_id"`
}

type ProjectPath struct {
	ProjectID int `path:"project_id"`
	TeamID    int `query:"team_id"`
}

type ScopedPath struct {
	ID        int `path:"id"`
	TeamID    int `query:"team_id"`
	ProjectID int `query:"project_id"`
}

func (s *server) registerProjects(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "Search projects by name substring",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamID int    `query:"team_id"`
		Name   string `query:"name"`
	}) (*body[[]domain.Project], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListProjects(ctx, teamID, input.Name)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/project",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *body[backend.CreateProjectRequest]) (*body[domain.Project], error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		if _, err := domain.ParseProjectType(input.Body.Type.String()); err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		p, err := s.store.CreateProject(ctx, teamID, input.Body.Name, input.Body.Description, input.Body.Type)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/project/{project_id}",
		Summary:     "Get project",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ProjectPath) (*body[domain.Project], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		p, err := s.store.GetProject(ctx, teamID, input.ProjectID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/project/{project_id}",
		Summary:     "Rename or describe a project",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body backend.UpdateProjectRequest `json:"body"`
	}) (*body[domain.Project], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		p, err := s.store.UpdateProject(ctx, teamID, input.ProjectID, input.Body.Name, input.Body.Description)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/project/{project_id}",
		Summary:     "Delete project",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ProjectPath) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.DeleteProject(ctx, teamID, input.ProjectID); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "prepare-export",
		Method:        http.MethodPost,
		Path:          "/export",
		Summary:       "Start preparing a project export",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *body[backend.PrepareExportRequest]) (*body[domain.Export], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		e, err := s.store.CreateExport(ctx, teamID, input.Body.ProjectID, input.Body)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(e), nil
	})
}

func (s *server) registerProjectParts(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-project-settings",
		Method:      http.MethodGet,
		Path:        "/project/{project_id}/settings",
		Summary:     "List project settings",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ProjectPath) (*body[[]domain.ProjectSetting], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListSettings(ctx, teamID, input.ProjectID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-project-settings",
		Method:      http.MethodPut,
		Path:        "/project/{project_id}/settings",
		Summary:     "Upsert project settings",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body backend.SettingsRequest `json:"body"`
	}) (*body[[]domain.ProjectSetting], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.SaveSettings(ctx, teamID, input.ProjectID, input.Body.Settings)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project-workflow",
		Method:      http.MethodGet,
		Path:        "/project/{project_id}/workflow",
		Summary:     "List workflow steps",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ProjectPath) (*body[[]domain.Workflow], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListWorkflows(ctx, teamID, input.ProjectID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-project-workflow",
		Method:      http.MethodPost,
		Path:        "/project/{project_id}/workflow",
		Summary:     "Replace workflow steps",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body backend.WorkflowsRequest `json:"body"`
	}) (*body[[]domain.Workflow], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.SaveWorkflows(ctx, teamID, input.ProjectID, input.Body.Steps)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project-users",
		Method:      http.MethodGet,
		Path:        "/project/{project_id}/users",
		Summary:     "List project contributors",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ProjectPath) (*body[[]domain.User], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListProjectUsers(ctx, teamID, input.ProjectID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "share-project",
		Method:      http.MethodPost,
		Path:        "/project/{project_id}/share",
		Summary:     "Share project with a team member",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body backend.ShareProjectRequest `json:"body"`
	}) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.ShareProject(ctx, teamID, input.ProjectID, input.Body.UserID, input.Body.Role); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-upload-token",
		Method:      http.MethodGet,
		Path:        "/project/{project_id}/uploadToken",
		Summary:     "Issue temporary storage credentials for a folder",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		FolderID int `query:"folder_id"`
	}) (*body[domain.UploadAuth], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		folder, err := s.store.GetFolder(ctx, teamID, input.ProjectID, input.FolderID)
		if err != nil {
			return nil, s.handleError(err)
		}
		count, err := s.store.CountImages(ctx, folder.ID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(domain.UploadAuth{
			AccessKeyID:         "emulator",
			SecretAccessKey:     "emulator",
			SessionToken:        uuid.NewString(),
			Region:              "us-east-1",
			Bucket:              s.bucket,
			FilePath:            domain.FolderPath(folder),
			AvailableImageCount: max(s.imageLimit-count, 0),
		}), nil
	})
}

func (s *server) registerFolders(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search-folders",
		Method:      http.MethodGet,
		Path:        "/folders",
		Summary:     "Search a project's folders by name substring",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamID    int    `query:"team_id"`
		ProjectID int    `query:"project_id"`
		Name      string `query:"name"`
	}) (*body[[]domain.Folder], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListFolders(ctx, teamID, input.ProjectID, input.Name)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-folder",
		Method:        http.MethodPost,
		Path:          "/folder",
		Summary:       "Create folder; a taken name gets a numeric suffix",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *body[backend.CreateFolderRequest]) (*body[domain.Folder], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		f, err := s.store.CreateFolder(ctx, teamID, input.Body.ProjectID, input.Body.Name)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(f), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-folder",
		Method:      http.MethodPut,
		Path:        "/folder/{id}",
		Summary:     "Rename folder",
		Errors:      append([]int{http.StatusConflict}, errorStatuses...),
	}, func(ctx context.Context, input *struct {
		ScopedPath
		Body backend.UpdateFolderRequest `json:"body"`
	}) (*body[domain.Folder], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		f, err := s.store.RenameFolder(ctx, teamID, input.ProjectID, input.ID, input.Body.Name)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(f), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-folders",
		Method:      http.MethodPut,
		Path:        "/folders/delete",
		Summary:     "Delete folders with their images",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *body[backend.DeleteFoldersRequest]) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.DeleteFolders(ctx, teamID, input.Body.ProjectID, input.Body.FolderIDs); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})
}

func (s *server) registerImages(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search-images",
		Method:      http.MethodGet,
		Path:        "/images",
		Summary:     "Search images",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamID           int    `query:"team_id"`
		ProjectID        int    `query:"project_id"`
		FolderID         int    `query:"folder_id"`
		Name             string `query:"name"`
		NamePrefix       string `query:"name_prefix"`
		AnnotationStatus int    `query:"annotation_status"`
	}) (*body[[]domain.Image], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.SearchImages(ctx, teamID, input.ProjectID, ImageQuery{
			FolderID:   input.FolderID,
			Name:       input.Name,
			NamePrefix: input.NamePrefix,
			Status:     domain.AnnotationStatus(input.AnnotationStatus),
		})
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-bulk-images",
		Method:      http.MethodPost,
		Path:        "/images/getBulk",
		Summary:     "Fetch a folder's images by exact names",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *body[backend.ImageNamesRequest]) (*body[[]domain.Image], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ImagesByName(ctx, teamID, input.Body.ProjectID, input.Body.FolderID, input.Body.Names)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-duplicate-images",
		Method:      http.MethodPost,
		Path:        "/images/getDuplicates",
		Summary:     "Report which names already exist in a folder",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *body[backend.ImageNamesRequest]) (*body[backend.DuplicatesResponse], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ImagesByName(ctx, teamID, input.Body.ProjectID, input.Body.FolderID, input.Body.Names)
		if err != nil {
			return nil, s.handleError(err)
		}
		names := make([]string, 0, len(items))
		for _, img := range items {
			names = append(names, img.Name)
		}
		return reply(backend.DuplicatesResponse{Names: names}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "attach-images",
		Method:      http.MethodPost,
		Path:        "/images/attach",
		Summary:     "Register stored objects or external URLs as images",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *body[backend.AttachFilesRequest]) (*body[backend.AttachFilesResponse], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		state := input.Body.UploadState
		if state == 0 {
			state = domain.UploadStateBasic
		}
		attached, skipped, err := s.store.AttachImages(ctx, teamID, input.Body.ProjectID, input.Body.FolderID, state, input.Body.Files, s.imageLimit)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(backend.AttachFilesResponse{Attached: attached, Skipped: skipped}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-image",
		Method:      http.MethodPut,
		Path:        "/image/{id}",
		Summary:     "Set an image's annotation status and pin",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ScopedPath
		Body backend.UpdateImageRequest `json:"body"`
	}) (*body[domain.Image], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		img, err := s.store.UpdateImage(ctx, teamID, input.ProjectID, input.ID, input.Body.AnnotationStatus, input.Body.IsPinned)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(img), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-image",
		Method:      http.MethodDelete,
		Path:        "/image/{id}",
		Summary:     "Delete image",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ScopedPath) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.DeleteImage(ctx, teamID, input.ProjectID, input.ID); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-image-download-url",
		Method:      http.MethodGet,
		Path:        "/image/{id}/downloadUrl",
		Summary:     "Link to an image's content",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		ScopedPath
		Variant string `query:"variant" enum:"original,lores" default:"original"`
	}) (*body[backend.DownloadURLResponse], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		img, err := s.store.GetImage(ctx, teamID, input.ProjectID, input.ID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(backend.DownloadURLResponse{URL: s.objectURL(ctx, img.Path)}), nil
	})
}

// objectURL links to p on this emulator's storage route. External images keep their URL.
// Every variant is served from the original object.
func (s *server) objectURL(ctx context.Context, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	scheme, host := "http", "localhost"
	if r := requestFromContext(ctx); r != nil {
		host = r.Host
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return fmt.Sprintf("%s://%s%s/%s/%s", scheme, host, storagePrefix, s.bucket, strings.TrimLeft(p, "/"))
}

func (s *server) registerClasses(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search-classes",
		Method:      http.MethodGet,
		Path:        "/classes",
		Summary:     "Search annotation classes by name prefix",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamID     int    `query:"team_id"`
		ProjectID  int    `query:"project_id"`
		NamePrefix string `query:"name_prefix"`
	}) (*body[[]domain.AnnotationClass], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.ListClasses(ctx, teamID, input.ProjectID, input.NamePrefix)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-classes",
		Method:        http.MethodPost,
		Path:          "/classes",
		Summary:       "Create annotation classes",
		DefaultStatus: http.StatusCreated,
		Errors:        errorStatuses,
	}, func(ctx context.Context, input *body[backend.CreateClassesRequest]) (*body[[]domain.AnnotationClass], error) {
		teamID, herr := requireTeam(ctx, input.Body.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.CreateClasses(ctx, teamID, input.Body.ProjectID, input.Body.Classes)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-class",
		Method:      http.MethodDelete,
		Path:        "/class/{id}",
		Summary:     "Delete annotation class",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *ScopedPath) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.DeleteClass(ctx, teamID, input.ProjectID, input.ID); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})
}

func (s *server) registerTeam(api huma.API) {
	type TeamPath struct {
		TeamID int `path:"team_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-team",
		Method:      http.MethodGet,
		Path:        "/team/{team_id}",
		Summary:     "Get team with members and pending invitations",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *TeamPath) (*body[domain.Team], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		t, err := s.store.GetTeam(ctx, teamID)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "invite-contributor",
		Method:        http.MethodPost,
		Path:          "/team/{team_id}/invite",
		Summary:       "Invite a contributor",
		DefaultStatus: http.StatusCreated,
		Errors:        append([]int{http.StatusConflict}, errorStatuses...),
	}, func(ctx context.Context, input *struct {
		TeamPath
		Body backend.InviteRequest `json:"body"`
	}) (*body[domain.Invitation], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		inv, err := s.store.Invite(ctx, teamID, input.Body.Email, input.Body.Role)
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(inv), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-invitation",
		Method:      http.MethodDelete,
		Path:        "/team/{team_id}/invite",
		Summary:     "Withdraw a pending invitation",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamPath
		Token string `query:"token"`
		Email string `query:"email"`
	}) (*struct{}, error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		if err := s.store.DeleteInvitation(ctx, teamID, input.Token, input.Email); err != nil {
			return nil, s.handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-team-users",
		Method:      http.MethodGet,
		Path:        "/team/{team_id}/users",
		Summary:     "Search team members by exact email or name",
		Errors:      errorStatuses,
	}, func(ctx context.Context, input *struct {
		TeamPath
		Email     string `query:"email"`
		FirstName string `query:"first_name"`
		LastName  string `query:"last_name"`
	}) (*body[[]domain.User], error) {
		teamID, herr := requireTeam(ctx, input.TeamID)
		if herr != nil {
			return nil, herr
		}
		items, err := s.store.SearchUsers(ctx, teamID, UserQuery{Email: input.Email, FirstName: input.FirstName, LastName: input.LastName})
		if err != nil {
			return nil, s.handleError(err)
		}
		return reply(items), nil
	})
}
