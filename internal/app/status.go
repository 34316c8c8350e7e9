package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/types"
)

// defaultStatusRepos are the repositories the provisioning flow cares
// about when none are named explicitly.
var defaultStatusRepos = []RepoRef{
	{Owner: "odoo", Repo: "odoo"},
	{Owner: "odoo", Repo: "enterprise"},
	{Owner: "OCA", Repo: "server-tools"},
}

// Status polls the GitHub API for the branch state of the addon
// repositories. Per-repo failures are reported inline so one unreachable
// repository does not hide the rest.
func (s Service) Status(ctx context.Context, request StatusRequest) (StatusResult, error) {
	settings := request.Settings
	repos := request.Repos
	if len(repos) == 0 {
		repos = defaultStatusRepos
	}

	client := s.RepoStatus(settings.GitHubUser, settings.GitHubToken)
	result := StatusResult{}
	for _, ref := range repos {
		status, err := client.BranchStatus(ctx, ref.Owner, ref.Repo, settings.Branch)
		if err != nil {
			log.Ctx(ctx).Error().
				Str("owner", ref.Owner).
				Str("repo", ref.Repo).
				Err(err).
				Msg("status query failed")
			status = types.RepoStatus{
				Owner:   ref.Owner,
				Repo:    ref.Repo,
				Branch:  settings.Branch,
				Message: err.Error(),
			}
		}
		result.Statuses = append(result.Statuses, status)
	}
	return result, nil
}
