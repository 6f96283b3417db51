package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/i18n"
	"github.com/videolingo/vlsetup/internal/core/launcher"
	"github.com/videolingo/vlsetup/internal/core/pip"
)

var launchPort int

var launchCmd = &cobra.Command{
	Use:   "launch [status|stop] [-- streamlit-args]",
	Short: "Run the VideoLingo app in the background",
	Long: `Launch starts the Streamlit app as a detached background process.

Examples:
  vlsetup launch                       # Start the app
  vlsetup launch status                # Show whether the app is running
  vlsetup launch stop                  # Stop the app
  vlsetup launch -p 9000               # Start on a custom port
  vlsetup launch -- --theme.base dark  # Pass extra flags to Streamlit

The app keeps running after the terminal closes; its output goes to the
log file printed on start.`,
	Args:      cobra.ArbitraryArgs,
	ValidArgs: []string{"status", "stop"},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		t := i18n.T(cfg.Language)

		// Everything after `--` goes to Streamlit verbatim
		var extra []string
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			extra = args[dash:]
			args = args[:dash]
		}
		if len(args) > 1 {
			exitErr(fmt.Errorf("too many arguments (expected 'status' or 'stop')"))
		}

		if len(args) > 0 {
			switch args[0] {
			case "stop":
				if err := stopApp(t); err != nil {
					exitErr(err)
				}
				return
			case "status":
				printAppStatus(t)
				return
			default:
				exitErr(fmt.Errorf("unknown argument %q (expected 'status' or 'stop')", args[0]))
			}
		}

		if launchPort != 0 {
			if err := cfg.Set("launch.port", strconv.Itoa(launchPort)); err != nil {
				exitErr(err)
			}
		}
		// Defaults may still work from inside the checkout, so this
		// warns rather than stops.
		if !config.Exists() {
			warnLine(t.Errors.ConfigNotFound)
		}
		if err := launchApp(cfg, t, extra); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	launchCmd.Flags().IntVarP(&launchPort, "port", "p", 0, "Streamlit listen port (default: 8501)")
	rootCmd.AddCommand(launchCmd)
}

// launchApp starts the detached Streamlit process. Also called at the
// end of a successful install.
func launchApp(cfg *config.Config, t *i18n.Translations, extraArgs []string) error {
	python, err := pip.Discover(cfg.Python)
	if err != nil {
		panelError(t.Errors.PythonNotFound)
		return err
	}

	// Resolve config > default, so a hand-edited partial config still works
	entry := cfg.AppEntry
	if entry == "" {
		entry = "st.py"
	}
	port := cfg.Launch.Port
	if port == 0 {
		port = 8501
	}

	l := &launcher.Launcher{
		AppDir:    appDir(cfg),
		Entry:     entry,
		Python:    python,
		Port:      port,
		ExtraArgs: extraArgs,
	}

	infoLine(t.Launch.Starting)
	pid, err := l.Start()
	if errors.Is(err, launcher.ErrAlreadyRunning) {
		if running, ok := launcher.Running(); ok {
			warnLine(fmt.Sprintf(t.Launch.AlreadyRunning, running))
		}
		return nil
	}
	if err != nil {
		return err
	}

	successLine(fmt.Sprintf(t.Launch.Started, pid))
	helpLine(fmt.Sprintf(t.Launch.URLHint, port))
	helpLine(fmt.Sprintf(t.Launch.LogHint, launcher.LogFilePath()))
	return nil
}

func printAppStatus(t *i18n.Translations) {
	if pid, ok := launcher.Running(); ok {
		successLine(fmt.Sprintf(t.Launch.Running, pid))
		return
	}
	helpLine(t.Launch.NotRunning)
}

func stopApp(t *i18n.Translations) error {
	if err := launcher.Stop(); err != nil {
		if errors.Is(err, launcher.ErrNotRunning) {
			helpLine(t.Launch.NotRunning)
			return nil
		}
		return err
	}
	successLine(t.Launch.Stopped)
	return nil
}

func appDir(cfg *config.Config) string {
	if cfg.AppDir == "" {
		return "."
	}
	return cfg.AppDir
}
