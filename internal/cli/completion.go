package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/i18n"
	"github.com/videolingo/vlsetup/internal/core/mirror"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for vlsetup.

Bash:
  # Add to ~/.bashrc:
  source <(vlsetup completion bash)

  # Or install to system:
  vlsetup completion bash > /etc/bash_completion.d/vlsetup

Zsh:
  # Add to ~/.zshrc:
  source <(vlsetup completion zsh)

  # Or install to fpath:
  vlsetup completion zsh > "${fpath[1]}/_vlsetup"

Fish:
  vlsetup completion fish > ~/.config/fish/completions/vlsetup.fish

PowerShell:
  vlsetup completion powershell >> $PROFILE
`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return cmd.Help()
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeConfigKeys completes `config get <key>` and `config set <key> <value>`
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 1 {
		return completeConfigValues(args[0], toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, key := range config.Keys() {
		if strings.HasPrefix(key, toComplete) {
			completions = append(completions, key)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeConfigValues completes enumerable values for known keys
func completeConfigValues(key, toComplete string) ([]string, cobra.ShellCompDirective) {
	var candidates []string
	switch key {
	case "torch":
		candidates = []string{config.TorchAuto, config.TorchCUDA, config.TorchCPU}
	case "language":
		for _, l := range i18n.SupportedLanguages {
			candidates = append(candidates, l.Code)
		}
	default:
		// Free-form keys fall back to file completion (paths, URLs)
		return nil, cobra.ShellCompDirectiveDefault
	}

	var completions []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			completions = append(completions, c)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeMirrorNames completes `mirror --set <name>`
func completeMirrorNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, m := range mirror.Candidates {
		name := strings.ToLower(m.Name)
		if strings.HasPrefix(name, strings.ToLower(toComplete)) {
			completions = append(completions, name)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
