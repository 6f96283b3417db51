package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/core/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change vlsetup settings",
	Long: `Config manages the settings vlsetup stores between runs: the app
checkout location, the Python interpreter, the torch flavor, the pinned
PyPI index and the launch port.

Examples:
  vlsetup config show
  vlsetup config set language zh
  vlsetup config set app_dir ~/VideoLingo
  vlsetup config set torch cpu
  vlsetup config get torch`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List all settings and their current values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()

		width := 0
		for _, key := range config.Keys() {
			if len(key) > width {
				width = len(key)
			}
		}

		for _, key := range config.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			if value == "" {
				value = helpStyle.Render("(unset)")
			}
			fmt.Printf("  %s  %s\n", padRight(key, width), value)
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.SavePath())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		value, err := cfg.Get(args[0])
		if err != nil {
			exitErr(err)
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		if err := cfg.Set(args[0], args[1]); err != nil {
			exitErr(err)
		}
		if err := config.Save(cfg); err != nil {
			exitErr(err)
		}
		successLine(fmt.Sprintf("%s = %s", args[0], args[1]))
	},
}

func init() {
	configGetCmd.ValidArgsFunction = completeConfigKeys
	configSetCmd.ValidArgsFunction = completeConfigKeys

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
