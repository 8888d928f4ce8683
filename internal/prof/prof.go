// Package prof wires the CLI's --cpu-profile and --mem-profile flags to
// the runtime profilers.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Session owns the files an indexing run profiles into. Zero value is an
// inert session; Stop on it is a no-op.
type Session struct {
	cpu     *os.File
	memPath string
}

// Start opens the requested profiles. Either path may be empty.
func Start(cpuPath, memPath string) (*Session, error) {
	s := &Session{memPath: memPath}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpu = f
	}
	return s, nil
}

// Stop flushes the CPU profile and captures the heap snapshot. Safe to
// call exactly once, typically deferred right after Start.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.memPath != "" {
		f, err := os.Create(s.memPath)
		if err != nil {
			return fmt.Errorf("create mem profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write mem profile: %w", err)
		}
	}
	return nil
}
