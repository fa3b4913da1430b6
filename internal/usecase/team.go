package usecase

import (
	"context"
	"fmt"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
)

// TeamStore is the team gateway bound to the token's team.
type TeamStore interface {
	GetOne(ctx context.Context, cond condition.Condition) (*domain.Team, error)
	Invite(ctx context.Context, email string, role domain.UserRole) (domain.Invitation, error)
	DeleteInvitation(ctx context.Context, inv domain.Invitation) error
}

type GetTeam struct {
	teams TeamStore
	resp  *response.Response[domain.Team]
}

func NewGetTeam(teams TeamStore, resp *response.Response[domain.Team]) *GetTeam {
	return &GetTeam{teams: teams, resp: resp}
}

func (u *GetTeam) Execute(ctx context.Context) {
	t, err := u.teams.GetOne(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("get team: %w", err))
		return
	}
	if t == nil {
		u.resp.Report(&domain.NotFoundError{Kind: "team", Name: "current"})
		return
	}
	u.resp.SetData(*t)
}

type InviteContributor struct {
	teams  TeamStore
	invite domain.Invite
	resp   *response.Response[domain.Invitation]
}

// NewInviteContributor invites email to the team as an annotator, or as an admin when invite.Admin is set.
func NewInviteContributor(teams TeamStore, invite domain.Invite, resp *response.Response[domain.Invitation]) *InviteContributor {
	return &InviteContributor{teams: teams, invite: invite, resp: resp}
}

func (u *InviteContributor) Execute(ctx context.Context) {
	if err := u.invite.Validate(); err != nil {
		u.resp.Report(err)
		return
	}
	role := domain.RoleAnnotator
	if u.invite.Admin {
		role = domain.RoleAdmin
	}
	inv, err := u.teams.Invite(ctx, u.invite.Email, role)
	if err != nil {
		u.resp.Report(fmt.Errorf("invite %s: %w", u.invite.Email, err))
		return
	}
	u.resp.SetData(inv)
}

type DeleteContributorInvitation struct {
	teams TeamStore
	email string
	resp  *response.Response[domain.Invitation]
}

func NewDeleteContributorInvitation(teams TeamStore, email string, resp *response.Response[domain.Invitation]) *DeleteContributorInvitation {
	return &DeleteContributorInvitation{teams: teams, email: email, resp: resp}
}

func (u *DeleteContributorInvitation) Execute(ctx context.Context) {
	t, err := u.teams.GetOne(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("get team: %w", err))
		return
	}
	if t != nil {
		for _, inv := range t.PendingInvitations {
			if inv.Email != u.email {
				continue
			}
			if err := u.teams.DeleteInvitation(ctx, inv); err != nil {
				u.resp.Report(fmt.Errorf("delete invitation for %s: %w", u.email, err))
				return
			}
			u.resp.SetData(inv)
			return
		}
	}
	u.resp.Report(&domain.NotFoundError{Kind: "invitation", Name: u.email})
}

// ContributorFilter matches team users. Empty fields are ignored.
type ContributorFilter struct {
	Email     string
	FirstName string
	LastName  string
}

type SearchTeamContributors struct {
	contributors repository.ReadOnly[domain.User]
	filter       ContributorFilter
	resp         *response.Response[[]domain.User]
}

func NewSearchTeamContributors(contributors repository.ReadOnly[domain.User], filter ContributorFilter, resp *response.Response[[]domain.User]) *SearchTeamContributors {
	return &SearchTeamContributors{contributors: contributors, filter: filter, resp: resp}
}

func (u *SearchTeamContributors) Execute(ctx context.Context) {
	var cond condition.Condition
	if u.filter.Email != "" {
		cond = cond.And(condition.Eq("email", u.filter.Email))
	}
	if u.filter.FirstName != "" {
		cond = cond.And(condition.Eq("first_name", u.filter.FirstName))
	}
	if u.filter.LastName != "" {
		cond = cond.And(condition.Eq("last_name", u.filter.LastName))
	}
	users, err := u.contributors.GetAll(ctx, cond)
	if err != nil {
		u.resp.Report(fmt.Errorf("search team contributors: %w", err))
		return
	}
	u.resp.SetData(users)
}
