package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/i18n"
	"github.com/videolingo/vlsetup/internal/core/mirror"
	"github.com/videolingo/vlsetup/internal/core/pip"
)

var mirrorSet string

var mirrorCmd = &cobra.Command{
	Use:   "mirror [list]",
	Short: "Pick the fastest PyPI index",
	Long: `Mirror races the known PyPI indexes and points pip at the fastest
one. Domestic mirrors are often an order of magnitude faster than the
official index from some networks.

Examples:
  vlsetup mirror                 # Measure all mirrors, apply the fastest
  vlsetup mirror list            # Show the candidates without measuring
  vlsetup mirror --set tsinghua  # Apply one mirror by name

The choice is written to pip's global configuration and applies to every
later pip run, not just vlsetup.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"list"},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		t := i18n.T(cfg.Language)

		if len(args) > 0 {
			if args[0] != "list" {
				exitErr(fmt.Errorf("unknown argument %q (expected 'list')", args[0]))
			}
			printMirrorCandidates()
			return
		}

		if mirrorSet != "" {
			if err := applyMirrorByName(t, cfg, mirrorSet); err != nil {
				exitErr(err)
			}
			return
		}

		if err := runMirrorRace(t, cfg); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	mirrorCmd.Flags().StringVar(&mirrorSet, "set", "", "apply a mirror by name instead of measuring")
	mirrorCmd.RegisterFlagCompletionFunc("set", completeMirrorNames)
	rootCmd.AddCommand(mirrorCmd)
}

func runMirrorRace(t *i18n.Translations, cfg *config.Config) error {
	ctx := context.Background()

	var results []mirror.Result
	if term.IsTerminal(int(os.Stdout.Fd())) {
		r, err := runMirrorTUI(ctx)
		if err != nil {
			return err
		}
		if r == nil {
			// user cancelled
			return nil
		}
		results = r
	} else {
		// Not a terminal (piped output, notebook cell): measure without
		// the spinner and print the plain table.
		infoLine(t.Setup.MirrorChoosing)
		results = mirror.Measure(ctx, mirror.Candidates)
		fmt.Print(renderMirrorTable(results))
	}

	best, ok := mirror.Fastest(results)
	if !ok {
		return errors.New("no PyPI mirror reachable")
	}
	return applyMirror(ctx, t, cfg, best.Mirror)
}

func applyMirrorByName(t *i18n.Translations, cfg *config.Config, name string) error {
	m, ok := mirror.ByName(name)
	if !ok {
		names := make([]string, len(mirror.Candidates))
		for i, c := range mirror.Candidates {
			names[i] = c.Name
		}
		return fmt.Errorf("unknown mirror %q (candidates: %s)", name, strings.Join(names, ", "))
	}
	return applyMirror(context.Background(), t, cfg, m)
}

func applyMirror(ctx context.Context, t *i18n.Translations, cfg *config.Config, m mirror.Mirror) error {
	python, err := pip.Discover(cfg.Python)
	if err != nil {
		panelError(t.Errors.PythonNotFound)
		return err
	}
	if err := mirror.Apply(ctx, pip.New(python), m); err != nil {
		return err
	}
	successLine(fmt.Sprintf(t.Setup.MirrorSelected, m.URL))
	return nil
}

func printMirrorCandidates() {
	width := 0
	for _, m := range mirror.Candidates {
		if w := runewidth.StringWidth(m.Name); w > width {
			width = w
		}
	}
	for _, m := range mirror.Candidates {
		fmt.Printf("  %s  %s\n", padRight(m.Name, width), helpStyle.Render(m.URL))
	}
}
