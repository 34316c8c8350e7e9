package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"odoo-supervisor/internal/app"
)

type linkOptions struct {
	SourceDir string
	TargetDir string
	LinkAll   bool
}

func newLinkCommand() *cobra.Command {
	opts := linkOptions{}
	cmd := &cobra.Command{
		Use:   "link [addons.conf]",
		Short: "Scan and reconcile symlinks, skipping installs and setup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.SourceDir, "source-dir", "s", "", "Source directory for addons")
	cmd.Flags().StringVarP(&opts.TargetDir, "target-dir", "t", "", "Target directory for addon symlinks")
	cmd.Flags().BoolVar(&opts.LinkAll, "link-all", false, "Link every discovered addon, not only required ones")
	return cmd
}

func runLink(ctx context.Context, cmd *cobra.Command, args []string, opts linkOptions) error {
	settings, err := loadOptionalConfig(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source-dir") {
		settings.SourceDir = opts.SourceDir
	}
	if cmd.Flags().Changed("target-dir") {
		settings.TargetDir = opts.TargetDir
	}
	settings.LinkAll = settings.LinkAll || opts.LinkAll

	service := app.NewService()
	result, err := service.Link(ctx, app.LinkRequest{Settings: settings})
	if err != nil {
		return err
	}

	fmt.Printf("addons: %d, dependencies: %d\n", result.Addons, result.Dependencies)
	fmt.Printf("links: %d created, %d updated, %d skipped, %d conflicts\n",
		result.Links.Created, result.Links.Updated, result.Links.Skipped, result.Links.Conflicts)
	return nil
}
