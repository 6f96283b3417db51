package pip

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// TempFileName is the torch-free requirements copy written for hosted
// installs. It lives next to the original and is removed afterwards.
const TempFileName = "requirements_temp.txt"

// Requirement is one dependency line from a requirements file
type Requirement struct {
	// Name is the distribution name as written (no version, extras or markers)
	Name string
	// Raw is the full line as written
	Raw string
}

// nameEnd matches the first character that terminates a distribution
// name: a version operator, extras bracket, environment marker,
// direct reference or whitespace.
var nameEnd = regexp.MustCompile(`[=<>!~\[;@\s]`)

// ParseRequirements reads requirements lines, skipping blanks and
// comments. Each returned requirement keeps both the bare name and the
// raw line.
func ParseRequirements(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name := line
		if loc := nameEnd.FindStringIndex(line); loc != nil {
			name = line[:loc[0]]
		}
		if name == "" {
			continue
		}

		reqs = append(reqs, Requirement{Name: name, Raw: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return reqs, nil
}

// ParseRequirementsFile is ParseRequirements for a file on disk
func ParseRequirementsFile(path string) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reqs, err := ParseRequirements(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return reqs, nil
}

// Normalize maps a distribution name to its canonical comparison form:
// lowercase, with runs of dots, dashes and underscores collapsed to a
// single dash. pip reports "ruamel.yaml" and "typing_extensions" this
// way in different spellings depending on version.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastDash := false
	for _, r := range strings.ToLower(name) {
		if r == '-' || r == '_' || r == '.' {
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
			continue
		}
		lastDash = false
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "-")
}

// WriteTorchFree copies a requirements file to dst with the torch
// family (torch, torchaudio, torchvision) removed. Hosted notebooks
// ship their own CUDA torch build; reinstalling it wastes minutes and
// can break the runtime.
func WriteTorchFree(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "torch") {
			continue
		}
		kept = append(kept, line)
	}

	if err := os.WriteFile(dst, []byte(strings.Join(kept, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
