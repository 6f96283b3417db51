// Package pip drives the Python package manager of the target app.
//
// Every operation shells out to `python -m pip` with the interpreter
// chosen by Discover, never a bare `pip` binary, so the packages land
// in the same environment the app later runs in.
package pip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

// PyTorch pins. The CUDA build comes from the dedicated wheel index;
// the CPU pins are newer because the cu118 index stops at 2.0.0.
const (
	torchCUDASpec      = "torch==2.0.0"
	torchAudioCUDASpec = "torchaudio==2.0.0"
	torchCPUSpec       = "torch==2.1.2"
	torchAudioCPUSpec  = "torchaudio==2.1.2"
	cudaWheelIndex     = "https://download.pytorch.org/whl/cu118"
)

// Pip runs package operations against one Python environment
type Pip struct {
	// Python is the interpreter path, from Discover
	Python string

	// IndexURL overrides the package index for installs when set
	IndexURL string

	// Log receives streamed pip output. Defaults to os.Stdout.
	Log io.Writer
}

// New returns a Pip bound to the given interpreter
func New(python string) *Pip {
	return &Pip{Python: python, Log: os.Stdout}
}

// Overridable for tests
var (
	runOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}

	runStreaming = func(ctx context.Context, stdout, stderr io.Writer, env []string, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		cmd.Env = env
		return cmd.Run()
	}
)

// installEnv is the process environment for pip installs. Caching is
// forced on so repeated runs reuse downloaded wheels, and pip's output
// is pinned to UTF-8 so CJK package summaries survive Windows consoles.
func installEnv() []string {
	return append(os.Environ(),
		"PIP_NO_CACHE_DIR=0",
		"PYTHONIOENCODING=utf-8",
	)
}

func (p *Pip) logWriter() io.Writer {
	if p.Log != nil {
		return p.Log
	}
	return os.Stdout
}

// Installed returns the installed distributions as a map of normalized
// name to version, from a single `pip list` call.
func (p *Pip) Installed(ctx context.Context) (map[string]string, error) {
	output, err := runOutput(ctx, p.Python, "-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, fmt.Errorf("pip list failed: %w", err)
	}

	var entries []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse pip list output: %w", err)
	}

	installed := make(map[string]string, len(entries))
	for _, e := range entries {
		installed[Normalize(e.Name)] = e.Version
	}
	return installed, nil
}

// Missing returns the requirements not yet installed, in file order.
// An empty result means the environment is already satisfied.
func (p *Pip) Missing(ctx context.Context, reqs []Requirement) ([]string, error) {
	installed, err := p.Installed(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, req := range reqs {
		if _, ok := installed[Normalize(req.Name)]; !ok {
			missing = append(missing, req.Name)
		}
	}
	return missing, nil
}

// Install runs `pip install` with the given specs, streaming output to
// the log writer. The configured index override applies unless the
// specs carry their own.
func (p *Pip) Install(ctx context.Context, specs ...string) error {
	args := []string{"-m", "pip", "install"}
	args = append(args, specs...)
	if p.IndexURL != "" && !hasIndexFlag(specs) {
		args = append(args, "--index-url", p.IndexURL)
	}

	log.Printf("[pip] command: %s %s", p.Python, strings.Join(args, " "))
	if err := runStreaming(ctx, p.logWriter(), p.logWriter(), installEnv(), p.Python, args...); err != nil {
		return fmt.Errorf("pip install failed: %w", err)
	}
	return nil
}

// InstallRequirements installs from a requirements file
func (p *Pip) InstallRequirements(ctx context.Context, path string) error {
	return p.Install(ctx, "-r", path)
}

// InstallTorch installs the pinned PyTorch build for the given flavor
// ("cuda" or "cpu").
func (p *Pip) InstallTorch(ctx context.Context, flavor string) error {
	switch flavor {
	case "cuda":
		return p.Install(ctx, torchCUDASpec, torchAudioCUDASpec, "--index-url", cudaWheelIndex)
	case "cpu":
		return p.Install(ctx, torchCPUSpec, torchAudioCPUSpec)
	default:
		return fmt.Errorf("unknown torch flavor: %s", flavor)
	}
}

// ConfigSet sets a global pip configuration key, e.g. global.index-url
func (p *Pip) ConfigSet(ctx context.Context, key, value string) error {
	log.Printf("[pip] config set %s %s", key, value)
	if err := runStreaming(ctx, p.logWriter(), p.logWriter(), installEnv(), p.Python, "-m", "pip", "config", "set", key, value); err != nil {
		return fmt.Errorf("pip config set %s failed: %w", key, err)
	}
	return nil
}

func hasIndexFlag(specs []string) bool {
	for _, s := range specs {
		if s == "--index-url" || s == "-i" || strings.HasPrefix(s, "--index-url=") {
			return true
		}
	}
	return false
}
