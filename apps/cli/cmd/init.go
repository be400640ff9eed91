package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"faultline/packages/cases"
	"faultline/packages/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new faultline project",
	Long: `Initialize a new faultline project in the current directory.

This creates:
  - faultline.config.json  - Configuration file
  - cases/example.yaml     - Example case file

Examples:
  faultline init
  faultline init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "faultline.config.json")
	exampleFile := filepath.Join(cwd, "cases", "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	err = cases.WriteTemplate(exampleFile,
		"create channel rejects empty title",
		"POST", "/api/channels",
		"Example negative case generated by faultline init",
		[]string{"P1", "regression"})
	if err != nil {
		return fmt.Errorf("failed to create example case: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nfaultline project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'faultline run cases/' to execute the example cases.\n")

	return nil
}
