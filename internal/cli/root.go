package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/core/version"
)

var rootCmd = &cobra.Command{
	Use:   "vlsetup",
	Short: "One-click installer and launcher for VideoLingo",
	Long: `vlsetup prepares a machine to run VideoLingo: it detects the runtime
environment (local machine, Google Colab, Kaggle, Docker), checks for an
NVIDIA GPU, verifies ffmpeg, installs the Python dependencies with the
right PyTorch build, picks a fast PyPI index, and starts the Streamlit app.

Running vlsetup with no arguments is the same as 'vlsetup install'.
Run 'vlsetup doctor' first to see what is already in place.`,
	Version: version.Version,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInstall(); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	registerInstallFlags(rootCmd)
}

// Execute runs the root command. It is the single entry point used by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// exitErr prints err in red to stderr and terminates with a non-zero code.
// Commands call it instead of returning errors so cobra does not repeat
// the usage text after a runtime failure.
func exitErr(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	os.Exit(1)
}
