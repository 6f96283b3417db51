// Package launcher starts the Streamlit app as a detached process and
// tracks it through a PID file under the vlsetup config directory.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/videolingo/vlsetup/internal/core/config"
)

var (
	// ErrAlreadyRunning is returned by Start when a live PID exists
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning is returned by Stop when no live process is tracked
	ErrNotRunning = errors.New("application is not running")
)

// Launcher describes how to start the app
type Launcher struct {
	// AppDir is the application checkout; the process runs with this
	// as its working directory
	AppDir string

	// Entry is the Streamlit entry script, relative to AppDir
	Entry string

	// Python is the interpreter whose environment holds streamlit
	Python string

	// Port for the Streamlit server; 0 keeps Streamlit's default
	Port int

	// ExtraArgs are passed to Streamlit verbatim, after the built-in
	// arguments
	ExtraArgs []string
}

// Overridable for tests
var (
	processAlive = alive

	startProcess = func(cmd *exec.Cmd) (int, error) {
		if err := cmd.Start(); err != nil {
			return 0, err
		}
		return cmd.Process.Pid, nil
	}
)

// Start launches the app detached from the current terminal, with its
// output appended to the log file. Returns the new PID.
//
// Streamlit runs through `python -m streamlit` so it starts in the
// same environment the dependencies were installed into, and headless
// so the detached process never blocks on an interactive prompt.
func (l *Launcher) Start() (int, error) {
	if pid, running := Running(); running {
		return pid, ErrAlreadyRunning
	}

	if _, err := os.Stat(filepath.Join(l.AppDir, l.Entry)); err != nil {
		return 0, fmt.Errorf("entry script not found: %w", err)
	}

	// launch can be the first command to touch the config dir
	logPath := LogFilePath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create log file: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"-m", "streamlit", "run", l.Entry, "--server.headless=true"}
	if l.Port > 0 {
		args = append(args, "--server.port", strconv.Itoa(l.Port))
	}
	args = append(args, l.ExtraArgs...)

	cmd := exec.Command(l.Python, args...)
	cmd.Dir = l.AppDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = sysProcAttr()

	pid, err := startProcess(cmd)
	if err != nil {
		return 0, fmt.Errorf("failed to start application: %w", err)
	}

	if err := savePID(pid); err != nil {
		terminate(pid)
		return 0, fmt.Errorf("failed to save PID: %w", err)
	}

	return pid, nil
}

// Stop terminates the tracked process and removes the PID file
func Stop() error {
	pid := readPID()
	if pid <= 0 {
		return ErrNotRunning
	}

	if !processAlive(pid) {
		os.Remove(PIDFilePath())
		return ErrNotRunning
	}

	if err := terminate(pid); err != nil {
		os.Remove(PIDFilePath())
		return fmt.Errorf("failed to stop application: %w", err)
	}

	// Wait for process to exit
	for i := 0; i < 30; i++ {
		if !processAlive(pid) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	os.Remove(PIDFilePath())
	return nil
}

// Running reports the tracked PID and whether it is alive. A stale
// PID file is removed on the way.
func Running() (int, bool) {
	pid := readPID()
	if pid <= 0 {
		return 0, false
	}
	if !processAlive(pid) {
		os.Remove(PIDFilePath())
		return 0, false
	}
	return pid, true
}

// PIDFilePath returns the PID file location under the config dir
func PIDFilePath() string {
	configDir, err := config.ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vlsetup-launch.pid")
	}
	return filepath.Join(configDir, "launch.pid")
}

// LogFilePath returns the app log location under the config dir
func LogFilePath() string {
	configDir, err := config.ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vlsetup-launch.log")
	}
	return filepath.Join(configDir, "launch.log")
}

func savePID(pid int) error {
	pidFile := PIDFilePath()
	dir := filepath.Dir(pidFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), 0644)
}

func readPID() int {
	data, err := os.ReadFile(PIDFilePath())
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return pid
}
