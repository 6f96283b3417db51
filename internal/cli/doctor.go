package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/videolingo/vlsetup/internal/core/config"
	"github.com/videolingo/vlsetup/internal/core/ffmpeg"
	"github.com/videolingo/vlsetup/internal/core/gpu"
	"github.com/videolingo/vlsetup/internal/core/hostenv"
	"github.com/videolingo/vlsetup/internal/core/i18n"
	"github.com/videolingo/vlsetup/internal/core/pip"
)

var doctorJSON bool

type checkStatus string

const (
	statusOK   checkStatus = "ok"
	statusWarn checkStatus = "warn"
	statusFail checkStatus = "fail"
)

type checkResult struct {
	Name   string      `json:"name"`
	Status checkStatus `json:"status"`
	Detail string      `json:"detail"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment without changing it",
	Long: `Doctor inspects the machine and reports what is ready and what is
missing: runtime environment, Python interpreter, ffmpeg, NVIDIA GPU
and the Python dependencies. Nothing is installed or modified.

The exit code is 0 when everything required is in place and 1 otherwise,
so the command also works in scripts:

  vlsetup doctor --json | jq .ok`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDoctor())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor() int {
	ctx := context.Background()
	cfg := config.LoadOrDefault()
	t := i18n.T(cfg.Language)

	results := collectChecks(ctx, t, cfg)

	if doctorJSON {
		printDoctorJSON(results)
	} else {
		printDoctorReport(t, results)
	}

	for _, r := range results {
		if r.Status == statusFail {
			return 1
		}
	}
	return 0
}

func collectChecks(ctx context.Context, t *i18n.Translations, cfg *config.Config) []checkResult {
	rt := hostenv.Detect(ctx)
	python, pyErr := pip.Discover(cfg.Python)

	return []checkResult{
		{Name: t.Doctor.Runtime, Status: statusOK, Detail: rt.String()},
		pythonCheck(ctx, t, python, pyErr),
		ffmpegCheck(ctx, t),
		gpuCheck(ctx, t),
		depsCheck(ctx, t, cfg, python),
	}
}

func pythonCheck(ctx context.Context, t *i18n.Translations, python string, pyErr error) checkResult {
	if pyErr != nil {
		return checkResult{Name: t.Doctor.Python, Status: statusFail, Detail: t.Errors.PythonNotFound}
	}

	detail := python
	if version, err := pip.PythonVersion(ctx, python); err == nil {
		detail = fmt.Sprintf("%s (%s)", version, python)
	}
	return checkResult{Name: t.Doctor.Python, Status: statusOK, Detail: detail}
}

func ffmpegCheck(ctx context.Context, t *i18n.Translations) checkResult {
	version, err := ffmpeg.Check(ctx)
	if err != nil {
		return checkResult{Name: t.Doctor.FFmpeg, Status: statusFail, Detail: t.Errors.FFmpegRequired}
	}
	return checkResult{Name: t.Doctor.FFmpeg, Status: statusOK, Detail: version}
}

// gpuCheck never fails the report: the CPU build of PyTorch is a fully
// supported fallback. An undetermined probe is surfaced as a warning.
func gpuCheck(ctx context.Context, t *i18n.Translations) checkResult {
	info := gpu.Probe(ctx)
	switch info.Capability {
	case gpu.Present:
		detail := info.Name()
		if n := len(info.Devices); n > 1 {
			detail = fmt.Sprintf("%s (+%d more)", detail, n-1)
		}
		if info.Driver != "" {
			detail += ", driver " + info.Driver
		}
		return checkResult{Name: t.Doctor.GPU, Status: statusOK, Detail: detail}
	case gpu.Undetermined:
		return checkResult{Name: t.Doctor.GPU, Status: statusWarn, Detail: t.Setup.GPUUnknown}
	default:
		return checkResult{Name: t.Doctor.GPU, Status: statusOK, Detail: info.Capability.String()}
	}
}

func depsCheck(ctx context.Context, t *i18n.Translations, cfg *config.Config, python string) checkResult {
	if python == "" {
		return checkResult{Name: t.Doctor.Deps, Status: statusWarn, Detail: "skipped: no Python interpreter"}
	}

	reqPath := requirementsPath(cfg)
	reqs, err := pip.ParseRequirementsFile(reqPath)
	if err != nil {
		return checkResult{Name: t.Doctor.Deps, Status: statusWarn, Detail: fmt.Sprintf("cannot read %s", reqPath)}
	}

	missing, err := pip.New(python).Missing(ctx, reqs)
	if err != nil {
		// pip itself is broken or absent; nothing can be installed
		return checkResult{Name: t.Doctor.Deps, Status: statusFail, Detail: err.Error()}
	}
	if len(missing) == 0 {
		return checkResult{Name: t.Doctor.Deps, Status: statusOK, Detail: fmt.Sprintf("%d packages installed", len(reqs))}
	}
	return checkResult{
		Name:   t.Doctor.Deps,
		Status: statusFail,
		Detail: fmt.Sprintf("%d of %d missing: %s", len(missing), len(reqs), summarizeMissing(missing)),
	}
}

func summarizeMissing(missing []string) string {
	const max = 5
	if len(missing) <= max {
		return strings.Join(missing, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(missing[:max], ", "), len(missing)-max)
}

func printDoctorReport(t *i18n.Translations, results []checkResult) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Println(t.Doctor.Title)

	width := 0
	for _, r := range results {
		if w := runewidth.StringWidth(r.Name); w > width {
			width = w
		}
	}

	for _, r := range results {
		var mark string
		switch r.Status {
		case statusOK:
			mark = green.Sprint("✓")
		case statusWarn:
			mark = yellow.Sprint("!")
		default:
			mark = red.Sprint("✗")
		}
		fmt.Printf("  %s %s  %s\n", mark, padRight(r.Name, width), r.Detail)
	}

	failures := 0
	for _, r := range results {
		if r.Status == statusFail {
			failures++
		}
	}

	fmt.Println()
	if failures == 0 {
		green.Println(t.Doctor.AllGood)
		return
	}
	red.Println(fmt.Sprintf(t.Doctor.ProblemsFound, failures))
}

func printDoctorJSON(results []checkResult) {
	ok := true
	for _, r := range results {
		if r.Status == statusFail {
			ok = false
		}
	}

	report := struct {
		OK     bool          `json:"ok"`
		Checks []checkResult `json:"checks"`
	}{OK: ok, Checks: results}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitErr(err)
	}
	fmt.Println(string(data))
}
