package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/tolk/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tolk configuration",
	Long: `Write a config.yaml with default settings to your config directory.

Edit it to set the service URL, your reading and translation languages
and the alignment color palette.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()

	path := filepath.Join(configDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if _, err := config.EnsureConfigDir(configDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := config.Save(configDir, config.Default()); err != nil {
		return err
	}

	fmt.Printf("Initialized tolk configuration in %s\n\n", configDir)
	fmt.Printf("  Created %s\n", config.FileName)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set server_url to your translation and vocabulary service")
	fmt.Println("  2. Run 'tolk library add' or 'tolk library import' to add a text")
	fmt.Println("  3. Run 'tolk' to start reading")

	return nil
}
