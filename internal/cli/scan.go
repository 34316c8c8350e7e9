package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"odoo-supervisor/internal/app"
	"odoo-supervisor/internal/config"
	"odoo-supervisor/internal/types"
)

type scanOptions struct {
	SourceDir string
	Priority  []string
}

func newScanCommand() *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [addons.conf]",
		Short: "Discover addons and their dependency set without touching anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.SourceDir, "source-dir", "s", "", "Source directory for addons")
	cmd.Flags().StringSliceVar(&opts.Priority, "priority", nil, "Addon names scanned first")
	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, args []string, opts scanOptions) error {
	settings, err := loadOptionalConfig(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source-dir") {
		settings.SourceDir = opts.SourceDir
	}
	if len(opts.Priority) > 0 {
		settings.Priority = opts.Priority
	}

	service := app.NewService()
	result, err := service.Scan(ctx, app.ScanRequest{Settings: settings})
	if err != nil {
		return err
	}

	fmt.Printf("addons (%d):\n", len(result.Addons))
	for _, addon := range result.Addons {
		line := fmt.Sprintf("  %-32s %s", addon.Name, addon.Path)
		if len(addon.Depends) > 0 {
			line += fmt.Sprintf("  depends: %s", strings.Join(addon.Depends, ", "))
		}
		fmt.Println(line)
	}
	fmt.Printf("dependency set (%d): %s\n", len(result.Depends), strings.Join(result.Depends, ", "))
	return nil
}

func loadOptionalConfig(args []string) (types.Settings, error) {
	if len(args) == 1 {
		return config.Load(args[0])
	}
	return config.Defaults(), nil
}
