package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/backend"
	"annoctl/internal/config"
	"annoctl/internal/db"
	"annoctl/internal/domain"
	"annoctl/internal/emulator"
	"annoctl/internal/logging"
	"annoctl/internal/migrate"
	"annoctl/internal/storage"
	"annoctl/internal/usecase"
)

const token = config.Token("s3cr3t=7")

type fixture struct {
	client *backend.Client
	blobs  *storage.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLimit(t, 0)
}

func newFixtureWithLimit(t *testing.T, imageLimit int) *fixture {
	t.Helper()
	conn, err := db.Open(db.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, migrate.Migrate(conn))
	blobs := storage.NewMemory()
	handler, err := emulator.New(emulator.Config{Store: emulator.Store{DB: conn}, Blobs: blobs, ImageLimit: imageLimit, Logger: logging.Discard()})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		conn.Close()
	})
	return &fixture{client: backend.New(srv.URL+emulator.DefaultBasePath, token.String(), true), blobs: blobs}
}

func (f *fixture) controller(t *testing.T, service backend.Service) *Controller {
	t.Helper()
	if service == nil {
		service = f.client
	}
	c, err := New(service, token, WithLogger(logging.Discard()), WithStoreFactory(f.blobs.Factory()))
	require.NoError(t, err)
	return c
}

func createProject(t *testing.T, c *Controller, name string) domain.Project {
	t.Helper()
	resp, err := c.CreateProject(context.Background(), domain.Project{Name: name, Type: domain.ProjectTypeVector}, usecase.ProjectSetup{})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	return resp.Data
}

func folderNames(t *testing.T, c *Controller, project string) []string {
	t.Helper()
	resp, err := c.GetProjectFolders(context.Background(), project)
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	names := []string{}
	for _, f := range resp.Data {
		names = append(names, f.Name)
	}
	return names
}

// countingService counts upload credential requests.
type countingService struct {
	*backend.Client
	authCalls atomic.Int32
}

func (s *countingService) GetUploadAuth(ctx context.Context, teamID, projectID, folderID int) (json.RawMessage, error) {
	s.authCalls.Add(1)
	return s.Client.GetUploadAuth(ctx, teamID, projectID, folderID)
}

func TestNewRequiresTeamInToken(t *testing.T) {
	_, err := New(backend.New("http://localhost", "", true), "")
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	_, err = New(nil, token)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	c, err := New(backend.New("http://localhost", "", true), token)
	require.NoError(t, err)
	assert.Equal(t, 7, c.TeamID())
}

func TestFolderLifecycle(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	resp, err := c.CreateFolder(ctx, "P", "F")
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, "F", resp.Data.Name)
	assert.Equal(t, []string{"root", "F"}, folderNames(t, c, "P"))

	deleted, err := c.DeleteFolders(ctx, "P", []string{"F"})
	require.NoError(t, err)
	require.NoError(t, deleted.Err())
	assert.Equal(t, []string{"F"}, deleted.Data)
	assert.Equal(t, []string{"root"}, folderNames(t, c, "P"))
}

func TestEmptyFolderNameIsRoot(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	createProject(t, c, "P")

	resp, err := c.GetFolder(context.Background(), "P", "")
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, domain.RootFolderName, resp.Data.Name)
}

func TestRenamedProjectNoLongerResolves(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	resp, err := c.UpdateProject(ctx, "P", domain.ProjectPatch{Name: domain.Ptr("Q")})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, "Q", resp.Data.Name)

	_, err = c.CreateFolder(ctx, "P", "F")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	folder, err := c.CreateFolder(ctx, "Q", "F")
	require.NoError(t, err)
	assert.NoError(t, folder.Err())
}

func TestDeletedProjectIsForgotten(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	resp, err := c.DeleteProject(ctx, "P")
	require.NoError(t, err)
	require.NoError(t, resp.Err())

	_, err = c.GetFolder(ctx, "P", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicateProjectNamesDoNotResolve(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	for range 2 {
		_, err := f.client.CreateProject(ctx, backend.CreateProjectRequest{TeamID: 7, Name: "Dup", Type: domain.ProjectTypeVector})
		require.NoError(t, err)
	}

	_, err := c.GetFolder(ctx, "Dup", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestCreateProjectRefusesTakenName(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	createProject(t, c, "P")

	resp, err := c.CreateProject(context.Background(), domain.Project{Name: "P", Type: domain.ProjectTypeVector}, usecase.ProjectSetup{})
	require.NoError(t, err)
	assert.ErrorIs(t, resp.Err(), domain.ErrDuplicateName)
}

func TestStorageCredentialsAreFetchedOnce(t *testing.T) {
	f := newFixture(t)
	svc := &countingService{Client: f.client}
	c := f.controller(t, svc)
	ctx := context.Background()
	createProject(t, c, "P")

	for _, name := range []string{"a.jpg", "b.jpg"} {
		resp, err := c.UploadImageToS3(ctx, "P", "", domain.ImageSource{Name: name, Data: []byte(name)})
		require.NoError(t, err)
		require.NoError(t, resp.Err())
	}
	assert.Equal(t, int32(1), svc.authCalls.Load())
	assert.Len(t, f.blobs.Keys(emulator.DefaultBucket), 2)
}

func TestUploadThenDownloadImages(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	sources := []domain.ImageSource{
		{Name: "1.jpg", Data: []byte("one")},
		{Name: "2.jpg", Data: []byte("two")},
		{Name: "3.jpg", Data: []byte("three")},
	}
	up, err := c.UploadImages(ctx, "P", "", sources, domain.UploadOptions{})
	require.NoError(t, err)
	require.NoError(t, up.Err())
	assert.Equal(t, []string{"1.jpg", "2.jpg", "3.jpg"}, up.Data.Uploaded())

	again, err := c.UploadImages(ctx, "P", "", sources[:1], domain.UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.jpg"}, again.Data.Duplicates())

	down, err := c.DownloadImage(ctx, "P", "", "2.jpg", domain.VariantLores)
	require.NoError(t, err)
	require.NoError(t, down.Err())
	assert.Equal(t, "2.jpg___lores.jpg", down.Data.Name)
	assert.Equal(t, "two", string(down.Data.Data))

	status := domain.StatusCompleted
	updated, err := c.UpdateImage(ctx, "P", "", "3.jpg", domain.ImagePatch{AnnotationStatus: &status})
	require.NoError(t, err)
	require.NoError(t, updated.Err())
	assert.Equal(t, domain.StatusCompleted, updated.Data.AnnotationStatus)

	found, err := c.SearchImages(ctx, "P", "", usecase.ImageFilter{Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.Equal(t, "3.jpg", found.Data[0].Name)
}

func TestUploadImagesAppliesStatusAndQuality(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	opts := domain.UploadOptions{AnnotationStatus: domain.StatusInProgress, ImageQuality: domain.QualityOriginal}
	up, err := c.UploadImages(ctx, "P", "", []domain.ImageSource{{Name: "a.jpg", Data: []byte("a")}}, opts)
	require.NoError(t, err)
	require.NoError(t, up.Err())

	img, err := c.GetImage(ctx, "P", "", "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, img.Data.AnnotationStatus)

	meta, err := c.GetProjectMetadata(ctx, "P", usecase.MetadataOptions{Settings: true})
	require.NoError(t, err)
	require.NoError(t, meta.Err())
	var quality any
	for _, st := range meta.Data.Settings {
		if st.Attribute == domain.ImageQualitySetting {
			quality = st.Value
		}
	}
	assert.Equal(t, "original", quality)

	attached, err := c.AttachURLs(ctx, "P", "", []domain.Attachment{{Name: "b.jpg", URL: "https://cdn.test/b.jpg"}}, domain.UploadOptions{AnnotationStatus: domain.StatusCompleted})
	require.NoError(t, err)
	require.NoError(t, attached.Err())
	img, err = c.GetImage(ctx, "P", "", "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, img.Data.AnnotationStatus)
}

func TestUploadImagesStopsAtFolderLimit(t *testing.T) {
	f := newFixtureWithLimit(t, 2)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")

	sources := []domain.ImageSource{}
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"} {
		sources = append(sources, domain.ImageSource{Name: name, Data: []byte(name)})
	}
	up, err := c.UploadImages(ctx, "P", "", sources, domain.UploadOptions{})
	require.NoError(t, err)
	assert.False(t, up.OK())
	assert.ErrorIs(t, up.Err(), domain.ErrIncomplete)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, up.Data.Uploaded())
	assert.Equal(t, []string{"3.jpg", "4.jpg"}, up.Data.Failed())
	assert.Equal(t, domain.ReasonLimitExceeded, up.Data.Items[3].Reason)
	assert.Len(t, f.blobs.Keys(emulator.DefaultBucket), 2)
}

func TestUploadAnnotationsReportsMissingImages(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()
	createProject(t, c, "P")
	_, err := c.UploadImages(ctx, "P", "", []domain.ImageSource{{Name: "a.jpg", Data: []byte("a")}}, domain.UploadOptions{})
	require.NoError(t, err)

	resp, err := c.UploadAnnotations(ctx, "P", "", []domain.AnnotationFile{
		{ImageName: "a.jpg", Data: []byte(`[]`)},
		{ImageName: "b.jpg", Data: []byte(`[]`)},
	}, false)
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, []string{"a.jpg"}, resp.Data.Uploaded)
	assert.Equal(t, []string{"b.jpg"}, resp.Data.MissingImages)

	img, err := c.GetImage(ctx, "P", "", "a.jpg")
	require.NoError(t, err)
	data, ok := f.blobs.Get(emulator.DefaultBucket, img.Data.AnnotationKey())
	require.True(t, ok)
	assert.Equal(t, "[]", string(data))
}

func TestInvitationRoundTrip(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, nil)
	ctx := context.Background()

	inv, err := c.InviteContributor(ctx, "new@team.local", true)
	require.NoError(t, err)
	require.NoError(t, inv.Err())
	assert.Equal(t, domain.RoleAdmin, inv.Data.Role)

	team, err := c.GetTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team.Data.PendingInvitations, 1)

	del, err := c.DeleteContributorInvitation(ctx, "new@team.local")
	require.NoError(t, err)
	require.NoError(t, del.Err())

	missing, err := c.DeleteContributorInvitation(ctx, "new@team.local")
	require.NoError(t, err)
	assert.ErrorIs(t, missing.Err(), domain.ErrNotFound)
}
