package repository

import (
	"context"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

type Teams struct {
	service backend.Service
	teamID  int
}

var _ ReadOnly[domain.Team] = (*Teams)(nil)

func NewTeams(service backend.Service, teamID int) *Teams {
	return &Teams{service: service, teamID: teamID}
}

// GetAll returns the caller's own team; a token only ever sees one.
func (r *Teams) GetAll(ctx context.Context, _ condition.Condition) ([]domain.Team, error) {
	raw, err := r.service.GetTeam(ctx, r.teamID)
	if err != nil {
		return nil, err
	}
	t, err := TeamFromRecord(raw)
	if err != nil {
		return nil, err
	}
	return []domain.Team{t}, nil
}

func (r *Teams) GetOne(ctx context.Context, cond condition.Condition) (*domain.Team, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

func (r *Teams) Invite(ctx context.Context, email string, role domain.UserRole) (domain.Invitation, error) {
	raw, err := r.service.InviteContributor(ctx, r.teamID, backend.InviteRequest{Email: email, Role: role})
	if err != nil {
		return domain.Invitation{}, err
	}
	return InvitationFromRecord(raw)
}

func (r *Teams) DeleteInvitation(ctx context.Context, inv domain.Invitation) error {
	return r.service.DeleteTeamInvitation(ctx, r.teamID, inv.Token, inv.Email)
}

// TeamContributors searches the team's users by email or name.
type TeamContributors struct {
	service backend.Service
	teamID  int
}

var _ ReadOnly[domain.User] = (*TeamContributors)(nil)

func NewTeamContributors(service backend.Service, teamID int) *TeamContributors {
	return &TeamContributors{service: service, teamID: teamID}
}

func (r *TeamContributors) GetAll(ctx context.Context, cond condition.Condition) ([]domain.User, error) {
	raw, err := r.service.SearchTeamContributors(ctx, r.teamID, cond.Values())
	if err != nil {
		return nil, err
	}
	return decodeList(raw, UserFromRecord)
}

func (r *TeamContributors) GetOne(ctx context.Context, cond condition.Condition) (*domain.User, error) {
	items, err := r.GetAll(ctx, cond)
	if err != nil {
		return nil, err
	}
	return first(items), nil
}

type Exports struct {
	service backend.Service
	project domain.Project
}

func NewExports(service backend.Service, project domain.Project) *Exports {
	return &Exports{service: service, project: project}
}

// Insert asks the backend to start preparing an export.
func (r *Exports) Insert(ctx context.Context, e domain.Export) (domain.Export, error) {
	raw, err := r.service.PrepareExport(ctx, backend.PrepareExportRequest{
		TeamID:             r.project.TeamID,
		ProjectID:          r.project.ID,
		Folders:            e.Folders,
		AnnotationStatuses: e.AnnotationStatuses,
		IncludeFuse:        e.IncludeFuse,
		OnlyPinned:         e.OnlyPinned,
	})
	if err != nil {
		return domain.Export{}, err
	}
	return ExportFromRecord(raw)
}
