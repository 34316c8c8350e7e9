package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"odoo-supervisor/internal/app"
)

type statusOptions struct {
	Repos  []string
	Branch string
	Output string
}

func newStatusCommand() *cobra.Command {
	opts := statusOptions{}
	cmd := &cobra.Command{
		Use:   "status [addons.conf]",
		Short: "Report the upstream GitHub state of the addon repositories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Repos, "repo", nil, "Repository as owner/name (repeatable)")
	cmd.Flags().StringVar(&opts.Branch, "branch", "", "Branch to inspect (defaults to the configured Odoo series)")
	cmd.Flags().StringVar(&opts.Output, "output", "table", "Output format: table or yaml")
	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, args []string, opts statusOptions) error {
	settings, err := loadOptionalConfig(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("branch") {
		settings.Branch = opts.Branch
	}

	repos, err := parseRepoRefs(opts.Repos)
	if err != nil {
		return err
	}

	service := app.NewService()
	result, err := service.Status(ctx, app.StatusRequest{Settings: settings, Repos: repos})
	if err != nil {
		return err
	}

	if opts.Output == "yaml" {
		content, err := yaml.Marshal(result.Statuses)
		if err != nil {
			return err
		}
		fmt.Print(string(content))
		return nil
	}

	fmt.Printf("%-12s %-16s %-8s %-8s %-12s %s\n", "OWNER", "REPO", "BRANCH", "EXISTS", "COMMIT", "MESSAGE")
	for _, status := range result.Statuses {
		sha := status.CommitSHA
		if len(sha) > 10 {
			sha = sha[:10]
		}
		fmt.Printf("%-12s %-16s %-8s %-8t %-12s %s\n",
			status.Owner, status.Repo, status.Branch, status.Exists, sha, status.Message)
	}
	return nil
}

func parseRepoRefs(values []string) ([]app.RepoRef, error) {
	var refs []app.RepoRef
	for _, value := range values {
		parts := strings.SplitN(value, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid repository reference %q, expected owner/name", value)
		}
		refs = append(refs, app.RepoRef{Owner: parts[0], Repo: parts[1]})
	}
	return refs, nil
}
