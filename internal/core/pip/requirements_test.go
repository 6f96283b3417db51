package pip

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRequirements(t *testing.T) {
	content := `# Core dependencies
requests==2.32.3
rich
ruamel.yaml>=0.18

streamlit==1.38.0
librosa[display]~=0.10
pydub==0.25.1; python_version >= "3.8"
# trailing comment
typing_extensions!=4.0.0
`

	reqs, err := ParseRequirements(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseRequirements failed: %v", err)
	}

	wantNames := []string{
		"requests",
		"rich",
		"ruamel.yaml",
		"streamlit",
		"librosa",
		"pydub",
		"typing_extensions",
	}

	if len(reqs) != len(wantNames) {
		t.Fatalf("parsed %d requirements; want %d", len(reqs), len(wantNames))
	}
	for i, want := range wantNames {
		if reqs[i].Name != want {
			t.Errorf("reqs[%d].Name = %q; want %q", i, reqs[i].Name, want)
		}
	}

	// Raw lines are preserved verbatim
	if reqs[0].Raw != "requests==2.32.3" {
		t.Errorf("reqs[0].Raw = %q; want %q", reqs[0].Raw, "requests==2.32.3")
	}
}

func TestParseRequirementsEmpty(t *testing.T) {
	reqs, err := ParseRequirements(strings.NewReader("# only comments\n\n  \n"))
	if err != nil {
		t.Fatalf("ParseRequirements failed: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("parsed %d requirements from comment-only input; want 0", len(reqs))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"requests", "requests"},
		{"Ruamel.YAML", "ruamel-yaml"},
		{"typing_extensions", "typing-extensions"},
		{"zope.interface", "zope-interface"},
		{"a__weird..--name", "a-weird-name"},
		{"UPPER-Case", "upper-case"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteTorchFree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "requirements.txt")
	dst := filepath.Join(dir, TempFileName)

	content := `# deps
torch==2.0.0
torchaudio==2.0.0
requests==2.32.3
torchvision==0.15.0
streamlit==1.38.0
`
	if err := os.WriteFile(src, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteTorchFree(src, dst); err != nil {
		t.Fatalf("WriteTorchFree failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if strings.Contains(got, "torch") {
		t.Errorf("filtered file still mentions torch:\n%s", got)
	}
	for _, want := range []string{"# deps", "requests==2.32.3", "streamlit==1.38.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("filtered file lost %q:\n%s", want, got)
		}
	}
}

func TestWriteTorchFreeMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := WriteTorchFree(filepath.Join(dir, "nope.txt"), filepath.Join(dir, TempFileName))
	if err == nil {
		t.Fatal("WriteTorchFree succeeded on a missing source; want error")
	}
}
