package pip

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// recordedRun captures every streamed pip invocation
type recordedRun struct {
	args []string
	env  []string
}

func stubStreaming(t *testing.T, fail error) *[]recordedRun {
	t.Helper()

	var runs []recordedRun
	origRun := runStreaming
	t.Cleanup(func() { runStreaming = origRun })
	runStreaming = func(ctx context.Context, stdout, stderr io.Writer, env []string, name string, args ...string) error {
		runs = append(runs, recordedRun{args: append([]string{name}, args...), env: env})
		return fail
	}
	return &runs
}

func stubListOutput(t *testing.T, jsonOutput string, fail error) {
	t.Helper()

	origRun := runOutput
	t.Cleanup(func() { runOutput = origRun })
	runOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if fail != nil {
			return nil, fail
		}
		return []byte(jsonOutput), nil
	}
}

func TestInstalled(t *testing.T) {
	stubListOutput(t, `[{"name": "requests", "version": "2.32.3"}, {"name": "Ruamel.YAML", "version": "0.18.6"}]`, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard

	installed, err := p.Installed(context.Background())
	if err != nil {
		t.Fatalf("Installed failed: %v", err)
	}

	if v := installed["requests"]; v != "2.32.3" {
		t.Errorf("installed[requests] = %q; want %q", v, "2.32.3")
	}
	// Names come back normalized
	if _, ok := installed["ruamel-yaml"]; !ok {
		t.Errorf("installed is missing normalized ruamel-yaml: %v", installed)
	}
}

func TestInstalledPipFails(t *testing.T) {
	stubListOutput(t, "", errors.New("exit status 1"))

	p := New("/usr/bin/python3")
	if _, err := p.Installed(context.Background()); err == nil {
		t.Fatal("Installed succeeded; want error")
	}
}

func TestMissing(t *testing.T) {
	stubListOutput(t, `[{"name": "requests", "version": "2.32.3"}, {"name": "streamlit", "version": "1.38.0"}]`, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard

	reqs := []Requirement{
		{Name: "requests", Raw: "requests==2.32.3"},
		{Name: "librosa", Raw: "librosa"},
		{Name: "streamlit", Raw: "streamlit==1.38.0"},
		{Name: "pydub", Raw: "pydub"},
	}

	missing, err := p.Missing(context.Background(), reqs)
	if err != nil {
		t.Fatalf("Missing failed: %v", err)
	}

	want := []string{"librosa", "pydub"}
	if len(missing) != len(want) {
		t.Fatalf("Missing returned %v; want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %q; want %q", i, missing[i], want[i])
		}
	}
}

func TestMissingAllSatisfied(t *testing.T) {
	stubListOutput(t, `[{"name": "requests", "version": "2.32.3"}]`, nil)

	p := New("/usr/bin/python3")
	missing, err := p.Missing(context.Background(), []Requirement{{Name: "requests"}})
	if err != nil {
		t.Fatalf("Missing failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Missing = %v; want empty", missing)
	}
}

func TestInstallUsesIndexURL(t *testing.T) {
	runs := stubStreaming(t, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard
	p.IndexURL = "https://pypi.tuna.tsinghua.edu.cn/simple"

	if err := p.Install(context.Background(), "-r", "requirements.txt"); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if len(*runs) != 1 {
		t.Fatalf("ran %d commands; want 1", len(*runs))
	}
	got := strings.Join((*runs)[0].args, " ")
	want := "/usr/bin/python3 -m pip install -r requirements.txt --index-url https://pypi.tuna.tsinghua.edu.cn/simple"
	if got != want {
		t.Errorf("command = %q; want %q", got, want)
	}
}

func TestInstallOwnIndexWins(t *testing.T) {
	runs := stubStreaming(t, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard
	p.IndexURL = "https://pypi.tuna.tsinghua.edu.cn/simple"

	if err := p.Install(context.Background(), "torch==2.0.0", "--index-url", "https://download.pytorch.org/whl/cu118"); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	got := strings.Join((*runs)[0].args, " ")
	if strings.Contains(got, "tsinghua") {
		t.Errorf("configured index leaked into an install with its own index: %q", got)
	}
}

func TestInstallEnvOverrides(t *testing.T) {
	runs := stubStreaming(t, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard

	if err := p.Install(context.Background(), "requests"); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	env := (*runs)[0].env
	var hasCache, hasEncoding bool
	for _, e := range env {
		if e == "PIP_NO_CACHE_DIR=0" {
			hasCache = true
		}
		if e == "PYTHONIOENCODING=utf-8" {
			hasEncoding = true
		}
	}
	if !hasCache {
		t.Error("install env is missing PIP_NO_CACHE_DIR=0")
	}
	if !hasEncoding {
		t.Error("install env is missing PYTHONIOENCODING=utf-8")
	}
}

func TestInstallTorch(t *testing.T) {
	tests := []struct {
		name    string
		flavor  string
		want    string
		wantErr bool
	}{
		{
			name:   "CUDA build",
			flavor: "cuda",
			want:   "/usr/bin/python3 -m pip install torch==2.0.0 torchaudio==2.0.0 --index-url https://download.pytorch.org/whl/cu118",
		},
		{
			name:   "CPU build",
			flavor: "cpu",
			want:   "/usr/bin/python3 -m pip install torch==2.1.2 torchaudio==2.1.2",
		},
		{
			name:    "Unknown flavor",
			flavor:  "rocm",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := stubStreaming(t, nil)

			p := New("/usr/bin/python3")
			p.Log = io.Discard

			err := p.InstallTorch(context.Background(), tt.flavor)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("InstallTorch(%q) succeeded; want error", tt.flavor)
				}
				return
			}
			if err != nil {
				t.Fatalf("InstallTorch(%q) failed: %v", tt.flavor, err)
			}

			got := strings.Join((*runs)[0].args, " ")
			if got != tt.want {
				t.Errorf("command = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestInstallFailure(t *testing.T) {
	stubStreaming(t, errors.New("exit status 1"))

	p := New("/usr/bin/python3")
	p.Log = io.Discard

	if err := p.Install(context.Background(), "requests"); err == nil {
		t.Fatal("Install succeeded; want error")
	}
}

func TestConfigSet(t *testing.T) {
	runs := stubStreaming(t, nil)

	p := New("/usr/bin/python3")
	p.Log = io.Discard

	if err := p.ConfigSet(context.Background(), "global.index-url", "https://mirrors.aliyun.com/pypi/simple"); err != nil {
		t.Fatalf("ConfigSet failed: %v", err)
	}

	got := strings.Join((*runs)[0].args, " ")
	want := "/usr/bin/python3 -m pip config set global.index-url https://mirrors.aliyun.com/pypi/simple"
	if got != want {
		t.Errorf("command = %q; want %q", got, want)
	}
}
