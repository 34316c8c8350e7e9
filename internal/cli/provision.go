package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"odoo-supervisor/internal/app"
	"odoo-supervisor/internal/config"
	"odoo-supervisor/internal/shared"
	"odoo-supervisor/internal/types"
)

type provisionOptions struct {
	SourceDir     string
	TargetDir     string
	UID           int
	GID           int
	ForceUpdate   bool
	UseOCA        bool
	UseEE         bool
	InitContainer bool
	LinkAll       bool
	OdooAddons    string
	OCAAddons     string
}

func newProvisionCommand() *cobra.Command {
	opts := provisionOptions{}
	cmd := &cobra.Command{
		Use:   "provision <addons.conf>",
		Short: "Run the full provisioning flow for an Odoo addon tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SourceDir, "source-dir", "s", "", "Source directory for addons")
	cmd.Flags().StringVarP(&opts.TargetDir, "target-dir", "t", "", "Target directory for addon symlinks")
	cmd.Flags().IntVarP(&opts.UID, "uid", "u", -1, "Owner UID")
	cmd.Flags().IntVarP(&opts.GID, "gid", "g", -1, "Owner GID")
	cmd.Flags().BoolVar(&opts.ForceUpdate, "force-update", false, "Force update of config files and permissions")
	cmd.Flags().BoolVar(&opts.UseOCA, "addons-oca", false, "Install all OCA addons")
	cmd.Flags().BoolVar(&opts.UseEE, "addons-ee", false, "Install Odoo Enterprise addons")
	cmd.Flags().BoolVar(&opts.InitContainer, "init-container", false, "Strict init-container mode (fail fast, force requirements and update)")
	cmd.Flags().BoolVar(&opts.LinkAll, "link-all", false, "Link every discovered addon, not only required ones")
	cmd.Flags().StringVar(&opts.OdooAddons, "odoo-addons", "", "Comma-separated addon packages to pip install")
	cmd.Flags().StringVarP(&opts.OCAAddons, "odoo-addons-oca", "a", "", "Comma-separated OCA addon packages to pip install")

	return cmd
}

func runProvision(ctx context.Context, cmd *cobra.Command, configPath string, opts provisionOptions) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyProvisionFlags(cmd, &settings, opts)
	if err := config.Validate(ctx, settings); err != nil {
		return err
	}

	service := app.NewService()
	result, err := service.Provision(ctx, app.ProvisionRequest{Settings: settings})
	if err != nil {
		// The summary is printed even when the run aborts partway.
		fmt.Printf("provisioning failed: %s\n", errorMessage(err))
		return err
	}

	fmt.Printf("provisioning complete\n")
	fmt.Printf("  first run:     %t\n", result.FirstRun)
	fmt.Printf("  addons found:  %d\n", result.Addons)
	fmt.Printf("  dependencies:  %d\n", result.Dependencies)
	fmt.Printf("  links:         %d created, %d updated, %d skipped, %d conflicts\n",
		result.Links.Created, result.Links.Updated, result.Links.Skipped, result.Links.Conflicts)
	fmt.Printf("  marker:        %s\n", result.MarkerFile)
	return nil
}

func applyProvisionFlags(cmd *cobra.Command, settings *types.Settings, opts provisionOptions) {
	if cmd.Flags().Changed("source-dir") {
		settings.SourceDir = opts.SourceDir
	}
	if cmd.Flags().Changed("target-dir") {
		settings.TargetDir = opts.TargetDir
	}
	if cmd.Flags().Changed("uid") {
		settings.OwnerUID = opts.UID
	}
	if cmd.Flags().Changed("gid") {
		settings.OwnerGID = opts.GID
	}
	settings.ForceUpdate = settings.ForceUpdate || opts.ForceUpdate
	settings.UseOCA = settings.UseOCA || opts.UseOCA
	settings.UseEE = settings.UseEE || opts.UseEE
	settings.LinkAll = settings.LinkAll || opts.LinkAll
	if opts.OdooAddons != "" {
		settings.ExplicitAddons = shared.NormalizeList(opts.OdooAddons)
	}
	if opts.OCAAddons != "" {
		settings.ExplicitOCAAddons = shared.NormalizeList(opts.OCAAddons)
	}
	if opts.InitContainer || initContainerEnv() {
		settings.Mode = types.RunModeInit
	}
}

// initContainerEnv mirrors the ODOO_INIT_CONTAINER toggle deployments set
// instead of the flag.
func initContainerEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ODOO_INIT_CONTAINER"))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
