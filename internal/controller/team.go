package controller

import (
	"context"

	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
	"annoctl/internal/usecase"
)

func (c *Controller) GetTeam(ctx context.Context) (*response.Response[domain.Team], error) {
	return run(ctx, func(resp *response.Response[domain.Team]) usecase.UseCase {
		return usecase.NewGetTeam(repository.NewTeams(c.service, c.teamID), resp)
	}), nil
}

func (c *Controller) InviteContributor(ctx context.Context, email string, admin bool) (*response.Response[domain.Invitation], error) {
	return run(ctx, func(resp *response.Response[domain.Invitation]) usecase.UseCase {
		return usecase.NewInviteContributor(repository.NewTeams(c.service, c.teamID), domain.Invite{Email: email, Admin: admin}, resp)
	}), nil
}

func (c *Controller) DeleteContributorInvitation(ctx context.Context, email string) (*response.Response[domain.Invitation], error) {
	return run(ctx, func(resp *response.Response[domain.Invitation]) usecase.UseCase {
		return usecase.NewDeleteContributorInvitation(repository.NewTeams(c.service, c.teamID), email, resp)
	}), nil
}

func (c *Controller) SearchTeamContributors(ctx context.Context, filter usecase.ContributorFilter) (*response.Response[[]domain.User], error) {
	return run(ctx, func(resp *response.Response[[]domain.User]) usecase.UseCase {
		return usecase.NewSearchTeamContributors(repository.NewTeamContributors(c.service, c.teamID), filter, resp)
	}), nil
}
