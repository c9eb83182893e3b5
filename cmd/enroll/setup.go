package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create enroll configuration file",
	Long: `Create an enroll configuration file with sensible defaults.

By default, creates a global config at ~/.config/enroll/enroll.yml.
Use --project to create a project-local config in the current directory.
Global flags (--endpoint, --data-dir) are written into the file.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	out := setupConfig()

	var err error
	if setupFlags.project {
		err = config.WriteProject(out)
	} else {
		err = config.WriteGlobal(out)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config written to: %s\n\n", targetPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'enroll login' to save an API token, then 'enroll register'.")
	return nil
}

// setupConfig starts from the defaults and keeps endpoint and data dir
// given on the command line. Tokens are never written here.
func setupConfig() *config.Config {
	out := config.Default()
	if rootFlags.endpoint != "" {
		out.Endpoint = rootFlags.endpoint
	}
	if rootFlags.dataDir != "" {
		out.DataDir = rootFlags.dataDir
	}
	return out
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
