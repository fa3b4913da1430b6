package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"annoctl/internal/domain"
)

const userAgent = "annoctl"

// Client is the HTTP implementation of Service.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client. verifySSL=false disables certificate checks for self-hosted backends.
func New(baseURL, token string, verifySSL bool) *Client {
	c := &Client{
		BaseURL: baseURL,
		Token:   token,
		Timeout: 60 * time.Second,
	}
	if !verifySSL {
		c.HTTPClient = &http.Client{
			Timeout:   c.Timeout,
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}, //nolint:gosec
		}
	}
	return c
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func teamQuery(teamID int) url.Values {
	return url.Values{"team_id": {strconv.Itoa(teamID)}}
}

func scopeQuery(teamID, projectID int) url.Values {
	q := teamQuery(teamID)
	q.Set("project_id", strconv.Itoa(projectID))
	return q
}

func (c *Client) SearchProjects(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery("projects", query), nil)
}

func (c *Client) GetProject(ctx context.Context, teamID, projectID int) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("project/%d", projectID), teamQuery(teamID)), nil)
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "project", req)
}

func (c *Client) UpdateProject(ctx context.Context, teamID, projectID int, req UpdateProjectRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, withQuery(fmt.Sprintf("project/%d", projectID), teamQuery(teamID)), req)
}

func (c *Client) DeleteProject(ctx context.Context, teamID, projectID int) error {
	return c.do(ctx, http.MethodDelete, withQuery(fmt.Sprintf("project/%d", projectID), teamQuery(teamID)), nil, nil)
}

func (c *Client) GetProjectSettings(ctx context.Context, teamID, projectID int) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("project/%d/settings", projectID), teamQuery(teamID)), nil)
}

func (c *Client) SetProjectSettings(ctx context.Context, teamID, projectID int, req SettingsRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, withQuery(fmt.Sprintf("project/%d/settings", projectID), teamQuery(teamID)), req)
}

func (c *Client) GetProjectWorkflows(ctx context.Context, teamID, projectID int) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("project/%d/workflow", projectID), teamQuery(teamID)), nil)
}

func (c *Client) SetProjectWorkflows(ctx context.Context, teamID, projectID int, req WorkflowsRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, withQuery(fmt.Sprintf("project/%d/workflow", projectID), teamQuery(teamID)), req)
}

func (c *Client) GetProjectContributors(ctx context.Context, teamID, projectID int) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("project/%d/users", projectID), teamQuery(teamID)), nil)
}

func (c *Client) ShareProject(ctx context.Context, teamID, projectID int, req ShareProjectRequest) error {
	return c.do(ctx, http.MethodPost, withQuery(fmt.Sprintf("project/%d/share", projectID), teamQuery(teamID)), req, nil)
}

func (c *Client) SearchFolders(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery("folders", query), nil)
}

func (c *Client) CreateFolder(ctx context.Context, req CreateFolderRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "folder", req)
}

func (c *Client) UpdateFolder(ctx context.Context, teamID, projectID, folderID int, req UpdateFolderRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, withQuery(fmt.Sprintf("folder/%d", folderID), scopeQuery(teamID, projectID)), req)
}

func (c *Client) DeleteFolders(ctx context.Context, req DeleteFoldersRequest) error {
	return c.do(ctx, http.MethodPut, "folders/delete", req, nil)
}

func (c *Client) SearchImages(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery("images", query), nil)
}

func (c *Client) GetBulkImages(ctx context.Context, req ImageNamesRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "images/getBulk", req)
}

func (c *Client) UpdateImage(ctx context.Context, teamID, projectID, imageID int, req UpdateImageRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPut, withQuery(fmt.Sprintf("image/%d", imageID), scopeQuery(teamID, projectID)), req)
}

func (c *Client) DeleteImage(ctx context.Context, teamID, projectID, imageID int) error {
	return c.do(ctx, http.MethodDelete, withQuery(fmt.Sprintf("image/%d", imageID), scopeQuery(teamID, projectID)), nil, nil)
}

func (c *Client) GetDuplicatedImages(ctx context.Context, req ImageNamesRequest) ([]string, error) {
	var resp DuplicatesResponse
	if err := c.do(ctx, http.MethodPost, "images/getDuplicates", req, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

func (c *Client) AttachFiles(ctx context.Context, req AttachFilesRequest) (AttachFilesResponse, error) {
	var resp AttachFilesResponse
	err := c.do(ctx, http.MethodPost, "images/attach", req, &resp)
	return resp, err
}

func (c *Client) GetUploadAuth(ctx context.Context, teamID, projectID, folderID int) (json.RawMessage, error) {
	q := teamQuery(teamID)
	q.Set("folder_id", strconv.Itoa(folderID))
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("project/%d/uploadToken", projectID), q), nil)
}

func (c *Client) GetImageDownloadURL(ctx context.Context, teamID, projectID, imageID int, variant domain.ImageVariant) (DownloadURLResponse, error) {
	q := scopeQuery(teamID, projectID)
	q.Set("variant", string(variant))
	var resp DownloadURLResponse
	err := c.do(ctx, http.MethodGet, withQuery(fmt.Sprintf("image/%d/downloadUrl", imageID), q), nil, &resp)
	return resp, err
}

func (c *Client) SearchAnnotationClasses(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery("classes", query), nil)
}

func (c *Client) CreateAnnotationClasses(ctx context.Context, req CreateClassesRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "classes", req)
}

func (c *Client) DeleteAnnotationClass(ctx context.Context, teamID, projectID, classID int) error {
	return c.do(ctx, http.MethodDelete, withQuery(fmt.Sprintf("class/%d", classID), scopeQuery(teamID, projectID)), nil, nil)
}

func (c *Client) PrepareExport(ctx context.Context, req PrepareExportRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "export", req)
}

func (c *Client) GetTeam(ctx context.Context, teamID int) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, fmt.Sprintf("team/%d", teamID), nil)
}

func (c *Client) InviteContributor(ctx context.Context, teamID int, req InviteRequest) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, fmt.Sprintf("team/%d/invite", teamID), req)
}

func (c *Client) DeleteTeamInvitation(ctx context.Context, teamID int, token, email string) error {
	q := url.Values{"token": {token}, "email": {email}}
	return c.do(ctx, http.MethodDelete, withQuery(fmt.Sprintf("team/%d/invite", teamID), q), nil, nil)
}

func (c *Client) SearchTeamContributors(ctx context.Context, teamID int, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, withQuery(fmt.Sprintf("team/%d/users", teamID), query), nil)
}

// Download fetches rawURL without the platform token; signed URLs carry their own auth.
func (c *Client) Download(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return b, nil
}

func (c *Client) raw(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, method, endpoint, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", c.Token)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c.HTTPClient
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// withQuery appends q with keys sorted. Search filters are a conjunction of
// equalities matched by name, so the order a Condition was composed in is not
// sent; sorting keeps request URLs stable.
func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}
