// Package gpu probes for NVIDIA GPUs via the driver's nvidia-smi tool.
package gpu

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Capability is the outcome of a GPU probe. Absent means the machine
// has no usable NVIDIA GPU; Undetermined means a driver is installed
// but could not be queried, which is a different situation than having
// no GPU at all.
type Capability int

const (
	Undetermined Capability = iota
	Absent
	Present
)

func (c Capability) String() string {
	switch c {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "undetermined"
	}
}

// Device describes one NVIDIA GPU
type Device struct {
	Index    int
	Name     string
	MemoryMB int
}

// Info is the result of a probe
type Info struct {
	Capability Capability
	Devices    []Device
	Driver     string
}

// Name returns the first device name, or "" when none was found
func (i Info) Name() string {
	if len(i.Devices) == 0 {
		return ""
	}
	return i.Devices[0].Name
}

// probeTimeout bounds the nvidia-smi call; a GPU stuck in a bad power
// state can make it hang for minutes
const probeTimeout = 5 * time.Second

const queryFields = "index,name,memory.total,driver_version"

// Overridable for tests
var (
	goos     = runtime.GOOS
	lookPath = exec.LookPath

	runQuery = func(ctx context.Context, path string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, path, args...).Output()
	}
)

// Probe checks for NVIDIA GPUs. It never returns an error: a machine
// without a GPU is a normal install target, not a failure.
func Probe(ctx context.Context) Info {
	// NVIDIA dropped macOS driver support years ago
	if goos == "darwin" {
		return Info{Capability: Absent}
	}

	smi, err := lookPath("nvidia-smi")
	if err != nil {
		// No driver utilities installed means no usable GPU
		return Info{Capability: Absent}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := runQuery(ctx, smi, "--query-gpu="+queryFields, "--format=csv,noheader,nounits")
	if err != nil {
		// The driver exists but would not answer. Report that as
		// undetermined rather than claiming the machine has no GPU.
		return Info{Capability: Undetermined}
	}

	devices, driver := parseQuery(string(output))
	if len(devices) == 0 {
		return Info{Capability: Absent}
	}

	return Info{
		Capability: Present,
		Devices:    devices,
		Driver:     driver,
	}
}

// parseQuery reads nvidia-smi CSV output, one device per line:
//
//	0, NVIDIA GeForce RTX 4090, 24564, 550.54.14
func parseQuery(output string) ([]Device, string) {
	var devices []Device
	var driver string

	lines := strings.Split(strings.TrimSpace(output), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}

		fields := strings.Split(line, ", ")
		if len(fields) < 4 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}

		memory, _ := strconv.Atoi(strings.TrimSpace(fields[2]))

		devices = append(devices, Device{
			Index:    index,
			Name:     strings.TrimSpace(fields[1]),
			MemoryMB: memory,
		})

		if driver == "" {
			driver = strings.TrimSpace(fields[3])
		}
	}

	return devices, driver
}
