// Package prof captures Go-side profiles of callprof itself, so the
// tracer's own overhead can be inspected with the standard toolchain.
package prof

import (
	"errors"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Session holds the captures running for one command invocation. Empty
// paths disable the corresponding capture.
type Session struct {
	cpu      *os.File
	runtrace *os.File
	memPath  string
}

// Start begins the requested captures. On failure everything already
// started is stopped again.
func Start(cpuPath, tracePath, memPath string) (*Session, error) {
	s := &Session{memPath: memPath}

	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpu = f
	}

	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			s.stopCPU()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, err
		}
		s.runtrace = f
	}

	return s, nil
}

// Stop ends active captures and writes the heap profile if one was
// requested.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}

	var errs []error
	s.stopCPU()
	if s.runtrace != nil {
		trace.Stop()
		if err := s.runtrace.Close(); err != nil {
			errs = append(errs, err)
		}
		s.runtrace = nil
	}
	if s.memPath != "" {
		if err := writeHeap(s.memPath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() {
	if s.cpu == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpu.Close()
	s.cpu = nil
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
