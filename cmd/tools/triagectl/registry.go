package main

import (
	"fmt"

	"lead-triage/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the activity registry",
	}

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the activity registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return err
		},
	}
	validateCmd.Flags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	registryCmd.AddCommand(validateCmd)
	return registryCmd
}
