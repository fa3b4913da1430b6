package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/backend"
	"annoctl/internal/db"
	"annoctl/internal/domain"
	"annoctl/internal/logging"
	"annoctl/internal/migrate"
	"annoctl/internal/repository"
	"annoctl/internal/storage"
)

const testToken = "s3cr3t=7"

type testServer struct {
	URL   string
	Blobs *storage.Memory
	Store Store
}

func newTestServer(t *testing.T, mutate func(*Config)) *testServer {
	t.Helper()
	conn, err := db.Open(db.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, migrate.Migrate(conn))
	cfg := Config{Store: Store{DB: conn}, Blobs: storage.NewMemory(), Logger: logging.Discard()}
	if mutate != nil {
		mutate(&cfg)
	}
	handler, err := New(cfg)
	require.NoError(t, err)
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ln.Close()
		conn.Close()
	})
	return &testServer{URL: "http://" + ln.Addr().String(), Blobs: cfg.Blobs, Store: cfg.Store}
}

func (s *testServer) client(token string) *backend.Client {
	return backend.New(s.URL+DefaultBasePath, token, true)
}

func createProject(t *testing.T, c *backend.Client, name string) domain.Project {
	t.Helper()
	raw, err := c.CreateProject(context.Background(), backend.CreateProjectRequest{TeamID: 7, Name: name, Type: domain.ProjectTypeVector})
	require.NoError(t, err)
	p, err := repository.ProjectFromRecord(raw)
	require.NoError(t, err)
	return p
}

func folders(t *testing.T, c *backend.Client, projectID int, name string) []domain.Folder {
	t.Helper()
	q := url.Values{"team_id": {"7"}, "project_id": {strconv.Itoa(projectID)}}
	if name != "" {
		q.Set("name", name)
	}
	raw, err := c.SearchFolders(context.Background(), q)
	require.NoError(t, err)
	var out []domain.Folder
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func statusOf(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func TestCreateProjectAddsRootFolder(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)

	p := createProject(t, c, "Cats")
	assert.Equal(t, 7, p.TeamID)
	assert.Equal(t, domain.ProjectTypeVector, p.Type)

	got := folders(t, c, p.ID, "")
	require.Len(t, got, 1)
	assert.Equal(t, domain.RootFolderName, got[0].Name)
}

func TestSearchProjectsMatchesSubstring(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	createProject(t, c, "street cats")
	createProject(t, c, "dogs")

	raw, err := c.SearchProjects(context.Background(), url.Values{"team_id": {"7"}, "name": {"cat"}})
	require.NoError(t, err)
	var items []domain.Project
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "street cats", items[0].Name)
}

func TestFolderNameCollisionGetsSuffix(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	p := createProject(t, c, "P")

	names := []string{}
	for range 3 {
		raw, err := c.CreateFolder(context.Background(), backend.CreateFolderRequest{TeamID: 7, ProjectID: p.ID, Name: "F"})
		require.NoError(t, err)
		f, err := repository.FolderFromRecord(raw)
		require.NoError(t, err)
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"F", "F (1)", "F (2)"}, names)
}

func TestRootFolderCannotBeDeleted(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	p := createProject(t, c, "P")
	root := folders(t, c, p.ID, "")[0]

	err := c.DeleteFolders(context.Background(), backend.DeleteFoldersRequest{TeamID: 7, ProjectID: p.ID, FolderIDs: []int{root.ID}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestTokenTeamMismatchIsForbidden(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)

	_, err := c.SearchProjects(context.Background(), url.Values{"team_id": {"8"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t, nil)

	_, err := srv.client("").SearchProjects(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	_, err = srv.client("no-team-here").SearchProjects(context.Background(), url.Values{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestProjectNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	_, err := srv.client(testToken).GetProject(context.Background(), 7, 999)
	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))
}

func TestAttachRespectsFolderLimitAndDuplicates(t *testing.T) {
	srv := newTestServer(t, func(cfg *Config) { cfg.ImageLimit = 2 })
	c := srv.client(testToken)
	ctx := context.Background()
	p := createProject(t, c, "P")
	root := folders(t, c, p.ID, "")[0]

	resp, err := c.AttachFiles(ctx, backend.AttachFilesRequest{
		TeamID: 7, ProjectID: p.ID, FolderID: root.ID, UploadState: domain.UploadStateBasic,
		Files: []domain.ImageUpload{{Name: "a.jpg", Path: "k/a.jpg"}, {Name: "a.jpg", Path: "k/a.jpg"}, {Name: "b.jpg", Path: "k/b.jpg"}, {Name: "c.jpg", Path: "k/c.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, resp.Attached)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, resp.Skipped)

	dups, err := c.GetDuplicatedImages(ctx, backend.ImageNamesRequest{TeamID: 7, ProjectID: p.ID, FolderID: root.ID, Names: []string{"a.jpg", "z.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, dups)

	raw, err := c.GetUploadAuth(ctx, 7, p.ID, root.ID)
	require.NoError(t, err)
	auth, err := repository.UploadAuthFromRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, auth.AvailableImageCount)
	assert.Equal(t, DefaultBucket, auth.Bucket)
	assert.Equal(t, domain.FolderPath(root), auth.FilePath)
}

func TestPathIDsReachHandlers(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	ctx := context.Background()
	p := createProject(t, c, "Old")

	raw, err := c.UpdateProject(ctx, 7, p.ID, backend.UpdateProjectRequest{Name: "New"})
	require.NoError(t, err)
	renamed, err := repository.ProjectFromRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, p.ID, renamed.ID)
	assert.Equal(t, "New", renamed.Name)

	raw, err = c.CreateFolder(ctx, backend.CreateFolderRequest{TeamID: 7, ProjectID: p.ID, Name: "F"})
	require.NoError(t, err)
	var f domain.Folder
	require.NoError(t, json.Unmarshal(raw, &f))
	_, err = c.UpdateFolder(ctx, 7, p.ID, f.ID, backend.UpdateFolderRequest{Name: "G"})
	require.NoError(t, err)
	assert.Len(t, folders(t, c, p.ID, "G"), 1)

	_, err = c.GetUploadAuth(ctx, 7, p.ID, f.ID)
	assert.NoError(t, err)
}

func TestDownloadURLServesStoredObject(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	ctx := context.Background()
	p := createProject(t, c, "P")
	root := folders(t, c, p.ID, "")[0]
	key := domain.FolderPath(root) + "/a.jpg"
	srv.Blobs.Put(DefaultBucket, key, []byte("jpeg"))

	_, err := c.AttachFiles(ctx, backend.AttachFilesRequest{
		TeamID: 7, ProjectID: p.ID, FolderID: root.ID, UploadState: domain.UploadStateBasic,
		Files: []domain.ImageUpload{{Name: "a.jpg", Path: key}},
	})
	require.NoError(t, err)
	raw, err := c.GetBulkImages(ctx, backend.ImageNamesRequest{TeamID: 7, ProjectID: p.ID, FolderID: root.ID, Names: []string{"a.jpg"}})
	require.NoError(t, err)
	var imgs []domain.Image
	require.NoError(t, json.Unmarshal(raw, &imgs))
	require.Len(t, imgs, 1)

	for _, variant := range []domain.ImageVariant{domain.VariantOriginal, domain.VariantLores} {
		link, err := c.GetImageDownloadURL(ctx, 7, p.ID, imgs[0].ID, variant)
		require.NoError(t, err)
		data, err := c.Download(ctx, link.URL, link.Headers)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", string(data))
	}
}

func TestS3ClientRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()
	store, err := storage.NewS3(storage.Credentials{
		AccessKeyID: "emulator", SecretAccessKey: "emulator", Bucket: DefaultBucket,
	}, srv.URL+storagePrefix)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "1/2/3/a.jpg", []byte("pixels")))
	assert.Equal(t, []string{"1/2/3/a.jpg"}, srv.Blobs.Keys(DefaultBucket))

	data, err := store.Get(ctx, "1/2/3/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	_, err = store.Get(ctx, "1/2/3/missing.jpg")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestClassesAndWorkflow(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	ctx := context.Background()
	p := createProject(t, c, "P")

	raw, err := c.CreateAnnotationClasses(ctx, backend.CreateClassesRequest{TeamID: 7, ProjectID: p.ID, Classes: []backend.ClassInput{
		{Name: "car", AttributeGroups: []backend.AttributeGroupInput{{Name: "color", Attributes: []backend.AttributeInput{{Name: "red"}, {Name: "blue"}}}}},
		{Name: "cat"},
	}})
	require.NoError(t, err)
	var created []domain.AnnotationClass
	require.NoError(t, json.Unmarshal(raw, &created))
	require.Len(t, created, 2)
	require.Len(t, created[0].AttributeGroups, 1)
	assert.Len(t, created[0].AttributeGroups[0].Attributes, 2)

	raw, err = c.SearchAnnotationClasses(ctx, url.Values{"team_id": {"7"}, "project_id": {strconv.Itoa(p.ID)}, "name_prefix": {"ca"}})
	require.NoError(t, err)
	var found []domain.AnnotationClass
	require.NoError(t, json.Unmarshal(raw, &found))
	assert.Len(t, found, 2)

	_, err = c.SetProjectWorkflows(ctx, 7, p.ID, backend.WorkflowsRequest{Steps: []backend.WorkflowInput{{Step: 1, ClassID: 12345, Tool: 1}}})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	raw, err = c.SetProjectWorkflows(ctx, 7, p.ID, backend.WorkflowsRequest{Steps: []backend.WorkflowInput{{Step: 1, ClassID: created[1].ID, Tool: 2}}})
	require.NoError(t, err)
	var steps []domain.Workflow
	require.NoError(t, json.Unmarshal(raw, &steps))
	require.Len(t, steps, 1)
	assert.Equal(t, "cat", steps[0].ClassName)
}

func TestInvitationLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	c := srv.client(testToken)
	ctx := context.Background()

	raw, err := c.InviteContributor(ctx, 7, backend.InviteRequest{Email: "a@b.c", Role: domain.RoleAnnotator})
	require.NoError(t, err)
	inv, err := repository.InvitationFromRecord(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Token)

	_, err = c.InviteContributor(ctx, 7, backend.InviteRequest{Email: "a@b.c", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	raw, err = c.GetTeam(ctx, 7)
	require.NoError(t, err)
	team, err := repository.TeamFromRecord(raw)
	require.NoError(t, err)
	require.Len(t, team.PendingInvitations, 1)
	assert.Len(t, team.Users, 1)

	require.NoError(t, c.DeleteTeamInvitation(ctx, 7, inv.Token, inv.Email))
	err = c.DeleteTeamInvitation(ctx, 7, inv.Token, inv.Email)
	assert.True(t, backend.IsNotFound(err))
}
