package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/response"
)

func TestInviteContributorRoles(t *testing.T) {
	teams := &fakeTeams{}

	resp := response.New[domain.Invitation]()
	NewInviteContributor(teams, domain.Invite{Email: "a@example.com", Admin: true}, resp).Execute(context.Background())
	require.True(t, resp.OK(), resp.Err())
	assert.Equal(t, domain.RoleAdmin, resp.Data.Role)

	resp = response.New[domain.Invitation]()
	NewInviteContributor(teams, domain.Invite{Email: "b@example.com"}, resp).Execute(context.Background())
	assert.Equal(t, domain.RoleAnnotator, resp.Data.Role)

	resp = response.New[domain.Invitation]()
	NewInviteContributor(teams, domain.Invite{Email: "nope"}, resp).Execute(context.Background())
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrValidation)
	assert.Len(t, teams.invited, 2)
}

func TestDeleteContributorInvitationByEmail(t *testing.T) {
	teams := &fakeTeams{team: domain.Team{ID: 1, PendingInvitations: []domain.Invitation{
		{Email: "a@example.com", Token: "t1"},
		{Email: "b@example.com", Token: "t2"},
	}}}

	resp := response.New[domain.Invitation]()
	NewDeleteContributorInvitation(teams, "b@example.com", resp).Execute(context.Background())
	require.True(t, resp.OK())
	require.Len(t, teams.removed, 1)
	assert.Equal(t, "t2", teams.removed[0].Token)

	resp = response.New[domain.Invitation]()
	NewDeleteContributorInvitation(teams, "c@example.com", resp).Execute(context.Background())
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrNotFound)
}

func TestGetTeam(t *testing.T) {
	teams := &fakeTeams{team: domain.Team{ID: 4, Name: "vision"}}
	resp := response.New[domain.Team]()

	NewGetTeam(teams, resp).Execute(context.Background())

	require.True(t, resp.OK())
	assert.Equal(t, "vision", resp.Data.Name)
}

func TestPrepareExportValidatesInput(t *testing.T) {
	folders := newFolders(domain.Folder{ID: 1, Name: "root"}, domain.Folder{ID: 2, Name: "train"})

	exports := &fakeExports{}
	resp := response.New[domain.Export]()
	opts := ExportOptions{Folders: []string{"train"}, AnnotationStatuses: []domain.AnnotationStatus{domain.StatusCompleted}, OnlyPinned: true}
	NewPrepareExport(exports, folders, opts, resp).Execute(context.Background())
	require.True(t, resp.OK(), resp.Err())
	assert.Equal(t, "export-7", resp.Data.Name)
	assert.True(t, exports.got.OnlyPinned)
	assert.Equal(t, []string{"train"}, exports.got.Folders)

	resp = response.New[domain.Export]()
	NewPrepareExport(&fakeExports{}, folders, ExportOptions{Folders: []string{"val"}}, resp).Execute(context.Background())
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrNotFound)

	resp = response.New[domain.Export]()
	NewPrepareExport(&fakeExports{}, folders, ExportOptions{AnnotationStatuses: []domain.AnnotationStatus{42}}, resp).Execute(context.Background())
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrValidation)
}

type queryRecorder struct {
	query string
	users []domain.User
}

func (q *queryRecorder) GetAll(_ context.Context, cond condition.Condition) ([]domain.User, error) {
	q.query = cond.Query()
	return q.users, nil
}

func (q *queryRecorder) GetOne(ctx context.Context, cond condition.Condition) (*domain.User, error) {
	users, _ := q.GetAll(ctx, cond)
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func TestSearchTeamContributorsBuildsCondition(t *testing.T) {
	rec := &queryRecorder{users: []domain.User{{ID: "u1", Email: "a@example.com"}}}
	resp := response.New[[]domain.User]()

	NewSearchTeamContributors(rec, ContributorFilter{Email: "a@example.com", LastName: "Doe"}, resp).Execute(context.Background())

	require.True(t, resp.OK())
	assert.Equal(t, "email=a%40example.com&last_name=Doe", rec.query)
	assert.Len(t, resp.Data, 1)
}
