// Package ffmpeg verifies the FFmpeg toolchain the application depends on.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned by Check when ffmpeg is not on PATH
var ErrNotFound = errors.New("ffmpeg not found in PATH")

const checkTimeout = 10 * time.Second

// Overridable for tests
var (
	lookPath = exec.LookPath

	runOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}

	runStreaming = func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return cmd.Run()
	}
)

// Available checks if ffmpeg is installed and available in PATH
func Available() bool {
	_, err := lookPath("ffmpeg")
	return err == nil
}

// Check verifies that ffmpeg runs and returns its version string.
// A missing binary is reported as ErrNotFound.
func Check(ctx context.Context) (string, error) {
	path, err := lookPath("ffmpeg")
	if err != nil {
		return "", ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	output, err := runOutput(ctx, path, "-version")
	if err != nil {
		return "", fmt.Errorf("ffmpeg -version failed: %w", err)
	}

	return parseVersion(string(output)), nil
}

// parseVersion extracts the version token from `ffmpeg -version` output.
// The first line looks like:
//
//	ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers
func parseVersion(output string) string {
	line := strings.SplitN(strings.TrimSpace(output), "\n", 2)[0]
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[0] == "ffmpeg" && fields[1] == "version" {
		return fields[2]
	}
	return line
}

// InstallHosted installs ffmpeg with apt-get. Hosted notebook kernels
// run as root, so no sudo is involved. Command output streams to w.
func InstallHosted(ctx context.Context, w io.Writer) error {
	log.Printf("[ffmpeg] command: apt-get update")
	if err := runStreaming(ctx, w, w, "apt-get", "update"); err != nil {
		return fmt.Errorf("apt-get update failed: %w", err)
	}

	log.Printf("[ffmpeg] command: apt-get install -y ffmpeg")
	if err := runStreaming(ctx, w, w, "apt-get", "install", "-y", "ffmpeg"); err != nil {
		return fmt.Errorf("apt-get install ffmpeg failed: %w", err)
	}

	return nil
}

// Guidance describes how to install ffmpeg by hand on one platform
type Guidance struct {
	Commands []string
	Note     string
}

// Instructions returns the manual install guidance for the given OS
func Instructions(goos string) Guidance {
	switch goos {
	case "windows":
		return Guidance{
			Commands: []string{"choco install ffmpeg"},
			Note:     "Install Chocolatey first (https://chocolatey.org/)",
		}
	case "darwin":
		return Guidance{
			Commands: []string{"brew install ffmpeg"},
			Note:     "Install Homebrew first (https://brew.sh/)",
		}
	default:
		return Guidance{
			Commands: []string{
				"sudo apt install ffmpeg   # Ubuntu/Debian",
				"sudo yum install ffmpeg   # CentOS/RHEL",
			},
			Note: "Use your distribution's package manager",
		}
	}
}
