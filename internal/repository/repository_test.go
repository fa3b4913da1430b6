package repository

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/storage"
)

// stubService implements only what each test sets; the embedded nil interface panics otherwise.
type stubService struct {
	backend.Service
	queries       []url.Values
	projects      string
	folders       string
	images        string
	deletedFolder []int
}

func (s *stubService) SearchProjects(_ context.Context, q url.Values) (json.RawMessage, error) {
	s.queries = append(s.queries, q)
	return json.RawMessage(s.projects), nil
}

func (s *stubService) SearchFolders(_ context.Context, q url.Values) (json.RawMessage, error) {
	s.queries = append(s.queries, q)
	return json.RawMessage(s.folders), nil
}

func (s *stubService) SearchImages(_ context.Context, q url.Values) (json.RawMessage, error) {
	s.queries = append(s.queries, q)
	return json.RawMessage(s.images), nil
}

func (s *stubService) DeleteFolders(_ context.Context, req backend.DeleteFoldersRequest) error {
	s.deletedFolder = append(s.deletedFolder, req.FolderIDs...)
	return nil
}

func TestGetAllWithNoMatchesIsEmptyNotNil(t *testing.T) {
	ctx := context.Background()
	for _, body := range []string{"[]", "null", ""} {
		svc := &stubService{projects: body}
		items, err := NewProjects(svc, 7).GetAll(ctx, condition.Eq("name", "nope"))
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)

		one, err := NewProjects(svc, 7).GetOne(ctx, condition.Eq("name", "nope"))
		require.NoError(t, err)
		assert.Nil(t, one)
	}
}

func TestProjectsScopeByTeam(t *testing.T) {
	svc := &stubService{projects: `[{"id":1,"team_id":7,"name":"P","type":1,"extra":"ignored"}]`}
	items, err := NewProjects(svc, 7).GetAll(context.Background(), condition.Eq("name", "P"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ProjectTypeVector, items[0].Type)
	assert.Equal(t, "7", svc.queries[0].Get("team_id"))
	assert.Equal(t, "P", svc.queries[0].Get("name"))
}

func TestFoldersScopeByProject(t *testing.T) {
	svc := &stubService{folders: `[{"id":2,"project_id":3,"name":"root"}]`}
	repo := NewFolders(svc, domain.Project{ID: 3, TeamID: 7})
	f, err := repo.GetOne(context.Background(), condition.Eq("name", "root"))
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, f.IsRoot())
	q := svc.queries[0]
	assert.Equal(t, "7", q.Get("team_id"))
	assert.Equal(t, "3", q.Get("project_id"))

	ok, err := repo.BulkDelete(context.Background(), []domain.Folder{{ID: 4}, {ID: 5}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{4, 5}, svc.deletedFolder)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	svc := &stubService{
		folders: `[{"id":2,"project_id":3,"name":"root"},{"id":4,"project_id":3,"name":"F"}]`,
		images:  `[{"id":8,"project_id":3,"folder_id":4,"name":"a.jpg"}]`,
	}
	project := domain.Project{ID: 3, TeamID: 7}

	f, err := NewFolders(svc, project).Get(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "F", f.Name)
	assert.Equal(t, "3", svc.queries[0].Get("project_id"))

	missing, err := NewFolders(svc, project).Get(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	img, err := NewImages(svc, project).Get(ctx, 8)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "a.jpg", img.Name)
}

func TestImageRecordDefaults(t *testing.T) {
	img, err := ImageFromRecord(json.RawMessage(`{"id":1,"name":"a.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, img.AnnotationStatus)
	assert.Equal(t, domain.UploadStateBasic, img.UploadState)

	img, err = ImageFromRecord(json.RawMessage(`{"id":1,"name":"a.jpg","annotation_status":5}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, img.AnnotationStatus)

	_, err = ImageFromRecord(json.RawMessage(`{"id":"x"}`))
	require.Error(t, err)
}

func TestClassRecordDefaults(t *testing.T) {
	c, err := AnnotationClassFromRecord(json.RawMessage(`{"id":1,"name":"car"}`))
	require.NoError(t, err)
	assert.Equal(t, "object", c.Type)
	assert.NotNil(t, c.AttributeGroups)
}

func TestS3RepositoryKeys(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	repo, err := NewS3Repository(ctx, mem.Factory(), domain.UploadAuth{Bucket: "b", FilePath: "7/3/2"})
	require.NoError(t, err)
	folder := domain.Folder{ID: 2, ProjectID: 3, TeamID: 7}
	assert.Equal(t, "7/3/2/a.jpg", repo.Key(folder, "a.jpg"))

	require.NoError(t, repo.Put(ctx, repo.Key(folder, "a.jpg"), []byte("x")))
	got, err := repo.Get(ctx, "7/3/2/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
	assert.Equal(t, []string{"7/3/2/a.jpg"}, mem.Keys("b"))
}

func TestConfigRepository(t *testing.T) {
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "config.yml"))

	e, err := repo.GetOne("token")
	require.NoError(t, err)
	assert.Nil(t, e)

	_, err = repo.Insert(ConfigEntry{Key: "token", Value: "s=4"})
	require.NoError(t, err)
	_, err = repo.Insert(ConfigEntry{Key: "ssl_verify", Value: "false"})
	require.NoError(t, err)

	e, err = repo.GetOne("token")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "s=4", e.Value)

	e, err = repo.GetOne("ssl_verify")
	require.NoError(t, err)
	assert.Equal(t, "false", e.Value)

	_, err = repo.GetOne("bogus")
	require.Error(t, err)
	_, err = repo.Insert(ConfigEntry{Key: "ssl_verify", Value: "maybe"})
	require.Error(t, err)
}
