package hostenv

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
)

// stubEnv replaces the package probes so Detect sees a synthetic
// environment, restoring the real ones on cleanup.
func stubEnv(t *testing.T, env map[string]string, dockerFiles map[string]bool, colabImport bool) {
	t.Helper()

	origGetenv := getenv
	origStat := fileStat
	origRead := readFile
	origLook := lookPath
	origProbe := importProbe
	t.Cleanup(func() {
		getenv = origGetenv
		fileStat = origStat
		readFile = origRead
		lookPath = origLook
		importProbe = origProbe
	})

	getenv = func(key string) string { return env[key] }
	fileStat = func(name string) (os.FileInfo, error) {
		if dockerFiles[name] {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
	readFile = func(name string) ([]byte, error) {
		return nil, errors.New("no such file")
	}
	lookPath = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
	importProbe = func(ctx context.Context, python string) bool {
		return colabImport
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		dockerFiles map[string]bool
		colabImport bool
		want        Kind
	}{
		{
			name: "Colab via release tag",
			env:  map[string]string{"COLAB_RELEASE_TAG": "release-colab-20250810"},
			want: Colab,
		},
		{
			name: "Colab via GPU marker",
			env:  map[string]string{"COLAB_GPU": "1"},
			want: Colab,
		},
		{
			name:        "Colab via import probe",
			env:         map[string]string{},
			colabImport: true,
			want:        Colab,
		},
		{
			name: "Kaggle kernel",
			env:  map[string]string{"KAGGLE_KERNEL_RUN_TYPE": "Interactive"},
			want: Kaggle,
		},
		{
			name:        "Docker via dockerenv",
			env:         map[string]string{},
			dockerFiles: map[string]bool{"/.dockerenv": true},
			want:        Docker,
		},
		{
			name: "Docker via kubernetes",
			env:  map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"},
			want: Docker,
		},
		{
			name: "Plain local",
			env:  map[string]string{},
			want: Local,
		},
		{
			name:        "Colab wins over Docker",
			env:         map[string]string{"COLAB_RELEASE_TAG": "release-colab-20250810"},
			dockerFiles: map[string]bool{"/.dockerenv": true},
			want:        Colab,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubEnv(t, tt.env, tt.dockerFiles, tt.colabImport)
			got := Detect(context.Background())
			if got.Kind != tt.want {
				t.Errorf("Detect().Kind = %q; want %q", got.Kind, tt.want)
			}
		})
	}
}

func TestHosted(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{Colab, true},
		{Kaggle, true},
		{Docker, false},
		{Local, false},
	}

	for _, tt := range tests {
		r := Runtime{Kind: tt.kind}
		if got := r.Hosted(); got != tt.want {
			t.Errorf("Runtime{%q}.Hosted() = %v; want %v", tt.kind, got, tt.want)
		}
	}
}

func TestRuntimeString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Colab, "Google Colab"},
		{Kaggle, "Kaggle"},
		{Docker, "Docker"},
		{Local, "local"},
	}

	for _, tt := range tests {
		r := Runtime{Kind: tt.kind}
		if got := r.String(); got != tt.want {
			t.Errorf("Runtime{%q}.String() = %q; want %q", tt.kind, got, tt.want)
		}
	}
}
