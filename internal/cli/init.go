package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/videolingo/vlsetup/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create vlsetup config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Run interactive wizard (loads existing config as defaults if present)
		cfg, err := runInitWizard()
		if err != nil {
			return err
		}

		// Save config
		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Printf("\nSaved %s\n", config.SavePath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
