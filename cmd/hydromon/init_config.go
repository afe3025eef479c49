package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hydromon/internal/config"
)

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a config file with all defaults",
	Long:  `Writes the config file (--config, default ./config.yaml) filled in with the default endpoints, scratch path and SMTP settings, ready for editing.`,
	Args:  cobra.NoArgs,
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil && !initConfigForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
