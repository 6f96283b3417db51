// Package hostenv classifies the environment vlsetup runs in.
//
// Hosted notebook runtimes (Google Colab, Kaggle) allow system package
// installation without prompting, so the install flow branches on this.
package hostenv

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Kind identifies the runtime environment class
type Kind string

const (
	Local  Kind = "local"
	Colab  Kind = "colab"
	Kaggle Kind = "kaggle"
	Docker Kind = "docker"
)

// Runtime describes the detected execution environment
type Runtime struct {
	Kind Kind
}

// Hosted reports whether the runtime is a hosted notebook environment
func (r Runtime) Hosted() bool {
	return r.Kind == Colab || r.Kind == Kaggle
}

// String returns a human-readable environment name
func (r Runtime) String() string {
	switch r.Kind {
	case Colab:
		return "Google Colab"
	case Kaggle:
		return "Kaggle"
	case Docker:
		return "Docker"
	default:
		return "local"
	}
}

// probeTimeout bounds the python import probe so a wedged interpreter
// cannot hang environment detection
const probeTimeout = 3 * time.Second

// Overridable for tests
var (
	getenv   = os.Getenv
	fileStat = os.Stat
	readFile = os.ReadFile
	lookPath = exec.LookPath

	importProbe = func(ctx context.Context, python string) bool {
		cmd := exec.CommandContext(ctx, python, "-c", "import google.colab")
		return cmd.Run() == nil
	}
)

// Detect classifies the current runtime. Colab is recognized by its
// environment markers first; if those are missing, the google.colab
// import probe catches stripped-down images.
func Detect(ctx context.Context) Runtime {
	if hasColabEnv() {
		return Runtime{Kind: Colab}
	}
	if hasKaggleEnv() {
		return Runtime{Kind: Kaggle}
	}
	if colabImportable(ctx) {
		return Runtime{Kind: Colab}
	}
	if InDocker() {
		return Runtime{Kind: Docker}
	}
	return Runtime{Kind: Local}
}

func hasColabEnv() bool {
	return getenv("COLAB_RELEASE_TAG") != "" || getenv("COLAB_GPU") != ""
}

func hasKaggleEnv() bool {
	return getenv("KAGGLE_KERNEL_RUN_TYPE") != "" || getenv("KAGGLE_URL_BASE") != ""
}

// colabImportable runs `python -c "import google.colab"` against the first
// interpreter on PATH. Import success means we are inside Colab even when
// the env markers were scrubbed.
func colabImportable(ctx context.Context) bool {
	python := ""
	for _, name := range []string{"python3", "python"} {
		if p, err := lookPath(name); err == nil {
			python = p
			break
		}
	}
	if python == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return importProbe(ctx, python)
}

// InDocker detects if we're running inside a Docker container
func InDocker() bool {
	// Check for .dockerenv file
	if _, err := fileStat("/.dockerenv"); err == nil {
		return true
	}
	// Check cgroup
	if data, err := readFile("/proc/1/cgroup"); err == nil {
		content := string(data)
		if strings.Contains(content, "docker") || strings.Contains(content, "containerd") {
			return true
		}
	}
	// Check for kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	return false
}
