package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/linkpatrol.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".linkpatrol"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new linkpatrol configuration file",
		Long: `Initialize creates a new .linkpatrol configuration file in the current directory.

The generated file includes:
- Default settings applied to every site
- Commented examples for site-specific configurations
- Documentation for all available options

Examples:
  # Create .linkpatrol in current directory
  linkpatrol init

  # Create config file at a specific path
  linkpatrol init -o myconfig.yaml

  # Force overwrite existing file
  linkpatrol init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/linkpatrol.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure site-specific settings such as:")
	fmt.Fprintln(out, "  - Authentication cookies and headers")
	fmt.Fprintln(out, "  - Crawl concurrency per site")
	fmt.Fprintln(out, "  - User-Agent pools")

	return nil
}
