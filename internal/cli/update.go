package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/updater"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update vlsetup to the latest release",
	Run: func(cmd *cobra.Command, args []string) {
		if updateCheckOnly {
			latest, found, err := updater.CheckUpdate()
			if err != nil {
				exitErr(err)
			}
			if !found {
				fmt.Println("vlsetup is up to date")
				return
			}
			fmt.Printf("New version available: %s\nRun 'vlsetup update' to install it\n", latest.Version())
			return
		}

		if err := updater.Update(); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "check for a new release without installing it")
	rootCmd.AddCommand(updateCmd)
}
