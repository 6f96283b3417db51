package launcher

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// tempHome points the config dir (and so the PID file) at a temp dir
func tempHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if os.Getenv("APPDATA") != "" {
		t.Setenv("APPDATA", home)
	}
}

func stubAlive(t *testing.T, alivePIDs map[int]bool) {
	t.Helper()
	orig := processAlive
	t.Cleanup(func() { processAlive = orig })
	processAlive = func(pid int) bool { return alivePIDs[pid] }
}

// capturedCmd records the parts of the spawned command the tests check
type capturedCmd struct {
	args        []string
	dir         string
	hasProcAttr bool
}

func stubStart(t *testing.T, pid int, fail error) *capturedCmd {
	t.Helper()
	captured := &capturedCmd{}
	orig := startProcess
	t.Cleanup(func() { startProcess = orig })
	startProcess = func(cmd *exec.Cmd) (int, error) {
		captured.args = cmd.Args
		captured.dir = cmd.Dir
		captured.hasProcAttr = cmd.SysProcAttr != nil
		if fail != nil {
			return 0, fail
		}
		return pid, nil
	}
	return captured
}

func writeEntry(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "st.py"), []byte("import streamlit\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPIDRoundTrip(t *testing.T) {
	tempHome(t)

	if got := readPID(); got != 0 {
		t.Fatalf("readPID() = %d before save; want 0", got)
	}
	if err := savePID(4242); err != nil {
		t.Fatalf("savePID failed: %v", err)
	}
	if got := readPID(); got != 4242 {
		t.Errorf("readPID() = %d; want 4242", got)
	}
}

func TestRunningCleansStalePIDFile(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})

	if err := savePID(4242); err != nil {
		t.Fatal(err)
	}

	pid, running := Running()
	if running {
		t.Fatalf("Running() = (%d, true) for a dead PID; want false", pid)
	}
	if _, err := os.Stat(PIDFilePath()); !os.IsNotExist(err) {
		t.Error("stale PID file was not removed")
	}
}

func TestRunningLiveProcess(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{4242: true})

	if err := savePID(4242); err != nil {
		t.Fatal(err)
	}

	pid, running := Running()
	if !running || pid != 4242 {
		t.Errorf("Running() = (%d, %v); want (4242, true)", pid, running)
	}
}

func TestStartBuildsDetachedStreamlitCommand(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})
	captured := stubStart(t, 5151, nil)

	appDir := writeEntry(t)
	l := &Launcher{
		AppDir: appDir,
		Entry:  "st.py",
		Python: "/usr/bin/python3",
		Port:   8501,
	}

	pid, err := l.Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if pid != 5151 {
		t.Errorf("Start() = %d; want 5151", pid)
	}

	got := strings.Join(captured.args, " ")
	want := "/usr/bin/python3 -m streamlit run st.py --server.headless=true --server.port 8501"
	if got != want {
		t.Errorf("command = %q; want %q", got, want)
	}
	if captured.dir != appDir {
		t.Errorf("cmd.Dir = %q; want %q", captured.dir, appDir)
	}
	if !captured.hasProcAttr {
		t.Error("cmd.SysProcAttr is nil; the process would stay attached")
	}

	if got := readPID(); got != 5151 {
		t.Errorf("PID file holds %d; want 5151", got)
	}
}

func TestStartDefaultPortOmitted(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})
	captured := stubStart(t, 5151, nil)

	l := &Launcher{
		AppDir: writeEntry(t),
		Entry:  "st.py",
		Python: "/usr/bin/python3",
	}

	if _, err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if strings.Contains(strings.Join(captured.args, " "), "--server.port") {
		t.Errorf("port flag present without a configured port: %v", captured.args)
	}
}

func TestStartExtraArgsAppended(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})
	captured := stubStart(t, 5151, nil)

	l := &Launcher{
		AppDir:    writeEntry(t),
		Entry:     "st.py",
		Python:    "/usr/bin/python3",
		Port:      8501,
		ExtraArgs: []string{"--theme.base", "dark"},
	}

	if _, err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	got := strings.Join(captured.args, " ")
	want := "/usr/bin/python3 -m streamlit run st.py --server.headless=true --server.port 8501 --theme.base dark"
	if got != want {
		t.Errorf("command = %q; want %q", got, want)
	}
}

func TestStartCreatesConfigDir(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})
	stubStart(t, 5151, nil)

	// No config was ever saved, so the config dir does not exist yet
	if _, err := os.Stat(filepath.Dir(LogFilePath())); !os.IsNotExist(err) {
		t.Fatalf("config dir present before Start: %v", err)
	}

	l := &Launcher{
		AppDir: writeEntry(t),
		Entry:  "st.py",
		Python: "/usr/bin/python3",
	}

	if _, err := l.Start(); err != nil {
		t.Fatalf("Start failed on a fresh config dir: %v", err)
	}
	if _, err := os.Stat(LogFilePath()); err != nil {
		t.Errorf("log file missing after Start: %v", err)
	}
}

func TestStartAlreadyRunning(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{4242: true})
	stubStart(t, 5151, nil)

	if err := savePID(4242); err != nil {
		t.Fatal(err)
	}

	l := &Launcher{
		AppDir: writeEntry(t),
		Entry:  "st.py",
		Python: "/usr/bin/python3",
	}

	pid, err := l.Start()
	if err != ErrAlreadyRunning {
		t.Fatalf("Start() error = %v; want ErrAlreadyRunning", err)
	}
	if pid != 4242 {
		t.Errorf("Start() pid = %d; want the existing 4242", pid)
	}
}

func TestStartMissingEntry(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})
	stubStart(t, 5151, nil)

	l := &Launcher{
		AppDir: t.TempDir(), // no st.py inside
		Entry:  "st.py",
		Python: "/usr/bin/python3",
	}

	if _, err := l.Start(); err == nil {
		t.Fatal("Start succeeded without an entry script; want error")
	}
}

func TestStopNotRunning(t *testing.T) {
	tempHome(t)
	stubAlive(t, map[int]bool{})

	if err := Stop(); err != ErrNotRunning {
		t.Errorf("Stop() error = %v; want ErrNotRunning", err)
	}
}
