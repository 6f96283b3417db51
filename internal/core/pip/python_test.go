package pip

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
)

func stubLookups(t *testing.T, onPath map[string]string, files map[string]bool) {
	t.Helper()

	origLook := lookPath
	origStat := fileStat
	t.Cleanup(func() {
		lookPath = origLook
		fileStat = origStat
	})

	lookPath = func(name string) (string, error) {
		if p, ok := onPath[name]; ok {
			return p, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
	fileStat = func(name string) (os.FileInfo, error) {
		if files[name] {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		onPath     map[string]string
		files      map[string]bool
		want       string
		wantErr    bool
	}{
		{
			name:       "Configured absolute path",
			configured: "/opt/conda/bin/python",
			files:      map[string]bool{"/opt/conda/bin/python": true},
			want:       "/opt/conda/bin/python",
		},
		{
			name:       "Configured path does not exist",
			configured: "/opt/conda/bin/python",
			wantErr:    true,
		},
		{
			name:       "Configured bare name",
			configured: "python3.11",
			onPath:     map[string]string{"python3.11": "/usr/bin/python3.11"},
			want:       "/usr/bin/python3.11",
		},
		{
			name:   "python3 preferred",
			onPath: map[string]string{"python3": "/usr/bin/python3", "python": "/usr/bin/python"},
			want:   "/usr/bin/python3",
		},
		{
			name:   "python fallback",
			onPath: map[string]string{"python": "/usr/bin/python"},
			want:   "/usr/bin/python",
		},
		{
			name:    "Nothing installed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookups(t, tt.onPath, tt.files)

			got, err := Discover(tt.configured)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Discover(%q) succeeded; want error", tt.configured)
				}
				return
			}
			if err != nil {
				t.Fatalf("Discover(%q) failed: %v", tt.configured, err)
			}
			if got != tt.want {
				t.Errorf("Discover(%q) = %q; want %q", tt.configured, got, tt.want)
			}
		})
	}
}

func TestDiscoverNoPythonError(t *testing.T) {
	stubLookups(t, nil, nil)

	_, err := Discover("")
	if !errors.Is(err, ErrNoPython) {
		t.Errorf("Discover(\"\") error = %v; want ErrNoPython", err)
	}
}

func TestPythonVersion(t *testing.T) {
	origRun := runOutput
	t.Cleanup(func() { runOutput = origRun })
	runOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Python 3.11.9\n"), nil
	}

	got, err := PythonVersion(context.Background(), "/usr/bin/python3")
	if err != nil {
		t.Fatalf("PythonVersion failed: %v", err)
	}
	if got != "Python 3.11.9" {
		t.Errorf("PythonVersion() = %q; want %q", got, "Python 3.11.9")
	}
}
