package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/ffmpeg"
	"github.com/videolingo/vlsetup/internal/core/gpu"
	"github.com/videolingo/vlsetup/internal/core/hostenv"
	"github.com/videolingo/vlsetup/internal/core/i18n"
	"github.com/videolingo/vlsetup/internal/core/mirror"
	"github.com/videolingo/vlsetup/internal/core/pip"
)

var (
	installYes          bool
	installAppDir       string
	installRequirements string
	installTorchFlavor  string
	installNoMirror     bool
	installSkipLaunch   bool
)

// errAborted signals that the user declined the confirmation prompt.
// Not an error for exit-code purposes.
var errAborted = errors.New("installation aborted")

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Set up the environment and start the app",
	Long: `Install checks the machine, installs the Python dependencies and
starts VideoLingo.

On a hosted notebook (Google Colab, Kaggle) the check is fast: when the
dependencies are already present only ffmpeg is verified, so re-running
the command in a fresh session costs seconds. On a local machine the
command verifies ffmpeg first, picks a fast PyPI index, installs the
PyTorch build matching the GPU and then the remaining requirements.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInstall(); err != nil {
			exitErr(err)
		}
	},
}

// registerInstallFlags binds the install flags to cmd. Shared with the
// root command, so `vlsetup --skip-launch` and `vlsetup install
// --skip-launch` behave identically.
func registerInstallFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&installYes, "yes", "y", false, "answer yes to all prompts")
	cmd.Flags().StringVarP(&installAppDir, "app-dir", "d", "", "VideoLingo checkout to set up (default: app_dir from config)")
	cmd.Flags().StringVarP(&installRequirements, "requirements", "r", "", "requirements file to install (default: requirements from config)")
	cmd.Flags().StringVar(&installTorchFlavor, "torch", "", "PyTorch build to install: auto, cuda or cpu")
	cmd.Flags().BoolVar(&installNoMirror, "no-mirror", false, "skip PyPI mirror selection")
	cmd.Flags().BoolVar(&installSkipLaunch, "skip-launch", false, "do not start the app when the install finishes")
}

func init() {
	registerInstallFlags(installCmd)
	rootCmd.AddCommand(installCmd)
}

func runInstall() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadOrDefault()
	if err := applyInstallFlags(cfg); err != nil {
		return err
	}
	t := i18n.T(cfg.Language)

	printBanner(t.Setup.Starting)

	if _, err := os.Stat(appDir(cfg)); err != nil {
		return fmt.Errorf(t.Errors.AppDirNotFound, appDir(cfg))
	}

	rt := hostenv.Detect(ctx)
	if rt.Hosted() {
		panelInfo(fmt.Sprintf(t.Setup.EnvHosted, rt.String()))
	} else {
		panelInfo(t.Setup.EnvLocal)
	}

	python, err := pip.Discover(cfg.Python)
	if err != nil {
		panelError(t.Errors.PythonNotFound)
		return err
	}
	p := pip.New(python)
	p.IndexURL = cfg.IndexURL

	if rt.Hosted() {
		done, err := hostedInstall(ctx, t, p, cfg)
		if err != nil || done {
			return err
		}
	} else {
		if err := localInstall(ctx, t, p, cfg); err != nil {
			if errors.Is(err, errAborted) {
				return nil
			}
			return err
		}
	}

	// Remember the interpreter that received the packages so launch and
	// doctor talk to the same environment.
	cfg.Python = python
	if err := config.Save(cfg); err != nil {
		warnLine(fmt.Sprintf("could not save config: %v", err))
	}

	panelSuccess(t.Setup.Completed)
	printTips(t)

	if installSkipLaunch {
		helpLine(t.Setup.NextSteps)
		return nil
	}
	return launchApp(cfg, t, nil)
}

func applyInstallFlags(cfg *config.Config) error {
	if installAppDir != "" {
		if err := cfg.Set("app_dir", installAppDir); err != nil {
			return err
		}
	}
	if installRequirements != "" {
		if err := cfg.Set("requirements", installRequirements); err != nil {
			return err
		}
	}
	if installTorchFlavor != "" {
		if err := cfg.Set("torch", installTorchFlavor); err != nil {
			return err
		}
	}
	return nil
}

func requirementsPath(cfg *config.Config) string {
	name := cfg.Requirements
	if name == "" {
		name = "requirements.txt"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(appDir(cfg), name)
}

// hostedInstall runs the notebook flow. done reports that the fast path
// finished the job and the completion steps should be skipped.
func hostedInstall(ctx context.Context, t *i18n.Translations, p *pip.Pip, cfg *config.Config) (done bool, err error) {
	reqPath := requirementsPath(cfg)

	if reqs, perr := pip.ParseRequirementsFile(reqPath); perr == nil && len(reqs) > 0 {
		if missing, merr := p.Missing(ctx, reqs); merr == nil && len(missing) == 0 {
			panelSuccess(t.Setup.DepsSatisfied)
			if err := ensureHostedFFmpeg(ctx, t); err != nil {
				return true, err
			}
			panelSuccess(t.Setup.FastPath)
			helpLine(t.Setup.NextSteps)
			return true, nil
		}
	}

	if err := ensureHostedFFmpeg(ctx, t); err != nil {
		return false, err
	}

	// Notebook kernels ship a CUDA-enabled torch; reinstalling it wastes
	// minutes and can break the preinstalled stack, so it is filtered
	// out of the requirements before the install.
	tempPath := filepath.Join(filepath.Dir(reqPath), pip.TempFileName)
	if err := pip.WriteTorchFree(reqPath, tempPath); err != nil {
		warnLine(fmt.Sprintf("%v", err))
		panelWarn(t.Setup.DepsPartial)
		return false, nil
	}
	defer os.Remove(tempPath)

	panelInfo(t.Setup.DepsInstalling)
	if err := p.InstallRequirements(ctx, tempPath); err != nil {
		warnLine(fmt.Sprintf("%s: %v", t.Errors.PipFailed, err))
		panelWarn(t.Setup.DepsPartial)
		return false, nil
	}
	panelSuccess(t.Setup.DepsDone)
	return false, nil
}

// ensureHostedFFmpeg installs ffmpeg with apt-get when it is missing.
// Notebook kernels run as root on Debian images, so this needs no sudo.
func ensureHostedFFmpeg(ctx context.Context, t *i18n.Translations) error {
	panelInfo(t.Setup.CheckingFFmpeg)
	if _, err := ffmpeg.Check(ctx); err == nil {
		panelSuccess(t.Setup.FFmpegFound)
		return nil
	}

	panelInfo(t.Setup.FFmpegInstalling)
	if err := ffmpeg.InstallHosted(ctx, os.Stdout); err != nil {
		return err
	}
	panelSuccess(t.Setup.FFmpegInstalled)
	return nil
}

func localInstall(ctx context.Context, t *i18n.Translations, p *pip.Pip, cfg *config.Config) error {
	// ffmpeg comes first: installing gigabytes of Python packages only
	// to stop on a missing system binary wastes the user's time.
	panelInfo(t.Setup.CheckingFFmpeg)
	if _, err := ffmpeg.Check(ctx); err != nil {
		panelError(t.Setup.FFmpegMissing)
		printFFmpegGuidance(t)
		return errors.New(t.Errors.FFmpegRequired)
	}
	panelSuccess(t.Setup.FFmpegFound)

	chooseMirror(ctx, t, p)

	flavor := cfg.Torch
	if flavor == "" || flavor == config.TorchAuto {
		flavor = resolveTorchFlavor(ctx, t)
	}

	if !confirmProceed(t, flavor) {
		warnLine(t.Setup.Aborted)
		return errAborted
	}

	if flavor == config.TorchCUDA {
		panelInfo(t.Setup.TorchCUDA)
	} else {
		panelInfo(t.Setup.TorchCPU)
	}
	if err := p.InstallTorch(ctx, flavor); err != nil {
		return fmt.Errorf("%s: %w", t.Errors.PipFailed, err)
	}

	panelInfo(t.Setup.DepsInstalling)
	if err := p.InstallRequirements(ctx, requirementsPath(cfg)); err != nil {
		// Partial installs are recoverable: the next run retries only
		// what is missing, so the failure does not abort the setup.
		warnLine(fmt.Sprintf("%s: %v", t.Errors.PipFailed, err))
		panelWarn(t.Setup.DepsPartial)
		return nil
	}
	panelSuccess(t.Setup.DepsDone)
	return nil
}

func printFFmpegGuidance(t *i18n.Translations) {
	g := ffmpeg.Instructions(runtime.GOOS)
	fmt.Println(t.Setup.FFmpegManual)
	for _, cmd := range g.Commands {
		fmt.Println("  " + cmd)
	}
	helpLine(g.Note)
}

// chooseMirror races the PyPI mirrors and points pip at the fastest one.
// Failures keep the current index; a slow mirror pick must never block
// the install itself.
func chooseMirror(ctx context.Context, t *i18n.Translations, p *pip.Pip) {
	if installNoMirror {
		helpLine(t.Setup.MirrorKept)
		return
	}
	if p.IndexURL != "" {
		infoLine(fmt.Sprintf(t.Setup.MirrorSelected, p.IndexURL))
		return
	}

	panelInfo(t.Setup.MirrorChoosing)
	best, err := mirror.Choose(ctx)
	if err != nil {
		warnLine(t.Setup.MirrorKept)
		return
	}
	if err := mirror.Apply(ctx, p, best.Mirror); err != nil {
		warnLine(t.Setup.MirrorKept)
		return
	}
	successLine(fmt.Sprintf(t.Setup.MirrorSelected, best.Mirror.URL))
}

// confirmProceed asks once before the long downloads start. Runs
// without a terminal on stdin (notebook cells, scripts) and runs with
// --yes proceed without asking.
func confirmProceed(t *i18n.Translations, flavor string) bool {
	if installYes || !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}

	fmt.Printf(t.Setup.Confirm, flavor)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

func resolveTorchFlavor(ctx context.Context, t *i18n.Translations) string {
	panelInfo(t.Setup.CheckingGPU)
	info := gpu.Probe(ctx)
	switch info.Capability {
	case gpu.Present:
		panelSuccess(fmt.Sprintf(t.Setup.GPUFound, info.Name()))
		return config.TorchCUDA
	case gpu.Undetermined:
		warnLine(t.Setup.GPUUnknown)
	default:
		infoLine(t.Setup.GPUAbsent)
	}
	return config.TorchCPU
}

func printTips(t *i18n.Translations) {
	if len(t.Tips.Items) == 0 {
		return
	}
	helpLine(t.Tips.Title + ":")
	for _, item := range t.Tips.Items {
		helpLine("  • " + item)
	}
}
