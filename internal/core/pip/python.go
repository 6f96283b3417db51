package pip

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// ErrNoPython is returned when no usable interpreter can be found
var ErrNoPython = errors.New("no python interpreter found")

// Overridable for tests
var (
	lookPath = exec.LookPath
	fileStat = os.Stat
)

// Discover finds the Python interpreter to use. An explicit configured
// value wins; otherwise python3 and python are tried on PATH.
func Discover(configured string) (string, error) {
	if configured != "" {
		if strings.ContainsAny(configured, `/\`) {
			if _, err := fileStat(configured); err != nil {
				return "", err
			}
			return configured, nil
		}
		return lookPath(configured)
	}

	for _, name := range []string{"python3", "python"} {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}

	return "", ErrNoPython
}

// PythonVersion returns the interpreter's version banner, e.g. "Python 3.11.9"
func PythonVersion(ctx context.Context, python string) (string, error) {
	output, err := runOutput(ctx, python, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
