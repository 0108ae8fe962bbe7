// Package probe provides the closed set of resource measurement probes.
// A probe reads one numeric metric for a process id from the /proc
// accounting files; the search engine calls it once per step.
package probe

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Func measures one resource metric for a process. It must not touch
// the debugger session and must read only the given process.
type Func func(pid int) (int64, error)

// ErrUnknownProbe is returned when a probe name is not in the registry.
var ErrUnknownProbe = errors.New("unknown probe")

// Info describes one available probe for usage output.
type Info struct {
	Name        string
	Description string
}

// Registry resolves probe names against a /proc-style filesystem root.
type Registry struct {
	procRoot string
}

// NewRegistry returns a registry reading from /proc.
func NewRegistry() *Registry {
	return NewRegistryAt("/proc")
}

// NewRegistryAt returns a registry reading from an alternate proc root.
func NewRegistryAt(root string) *Registry {
	return &Registry{procRoot: root}
}

// Lookup resolves a probe by name.
func (r *Registry) Lookup(name string) (Func, error) {
	switch name {
	case "private_dirty":
		return r.smapsSum("Private_Dirty:"), nil
	case "private_mem":
		return r.smapsSum("Private_"), nil
	case "io_rchar":
		return r.ioSum("rchar:"), nil
	case "io_wchar":
		return r.ioSum("wchar:"), nil
	case "fd_count":
		return r.fdCount, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProbe, name)
}

// List returns the available probes sorted by name.
func List() []Info {
	return []Info{
		{Name: "fd_count", Description: "number of open file descriptors"},
		{Name: "io_rchar", Description: "bytes read from any io source"},
		{Name: "io_wchar", Description: "bytes written to any io sink"},
		{Name: "private_dirty", Description: "private dirty memory (kB, from smaps)"},
		{Name: "private_mem", Description: "private memory, clean plus dirty (kB, from smaps)"},
	}
}

// smapsSum sums a field over all mappings in /proc/<pid>/smaps.
func (r *Registry) smapsSum(prefix string) Func {
	return func(pid int) (int64, error) {
		return sumFields(r.procFile(pid, "smaps"), prefix, 1)
	}
}

// ioSum sums a counter from /proc/<pid>/io.
func (r *Registry) ioSum(prefix string) Func {
	return func(pid int) (int64, error) {
		return sumFields(r.procFile(pid, "io"), prefix, 1)
	}
}

// fdCount counts the entries of /proc/<pid>/fd.
func (r *Registry) fdCount(pid int) (int64, error) {
	entries, err := os.ReadDir(r.procFile(pid, "fd"))
	if err != nil {
		return 0, fmt.Errorf("count fds: %w", err)
	}

	return int64(len(entries)), nil
}

func (r *Registry) procFile(pid int, name string) string {
	return filepath.Join(r.procRoot, strconv.Itoa(pid), name)
}

// sumFields totals the given whitespace-separated field of every line
// starting with prefix.
func sumFields(path, prefix string, field int) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("read accounting file: %w", err)
	}
	defer file.Close()

	var total int64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) <= field {
			continue
		}

		value, convErr := strconv.ParseInt(fields[field], 10, 64)
		if convErr != nil {
			return 0, fmt.Errorf("parse %q in %s: %w", fields[field], path, convErr)
		}

		total += value
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return 0, fmt.Errorf("scan %s: %w", path, scanErr)
	}

	return total, nil
}
