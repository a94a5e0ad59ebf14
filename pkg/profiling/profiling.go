// Package profiling writes CPU and heap profiles requested by command line flags.
package profiling

import (
	"io"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/filetug/tugfm/internal/log"
)

var (
	osCreate              = os.Create
	pprofStartCPUProfile  = pprof.StartCPUProfile
	pprofStopCPUProfile   = pprof.StopCPUProfile
	pprofWriteHeapProfile = func(w io.Writer) error { return pprof.WriteHeapProfile(w) }
	memProfilingInterval  = 10 * time.Second
)

var logger log.Logger = log.Noop

func SetLogger(l log.Logger) {
	logger = l.WithValues(log.Kv{"component": "profiling"})
}

// DoCPUProfiling starts CPU profiling into file and returns the function that stops it.
// Failures are logged and yield a no-op stop function.
func DoCPUProfiling(file string) func() {
	f, err := osCreate(file)
	if err != nil {
		logger.Errorf("could not create CPU profile %s: %v", file, err)
		return func() {}
	}
	if err = pprofStartCPUProfile(f); err != nil {
		logger.Errorf("could not start CPU profile: %v", err)
		_ = f.Close()
		return func() {}
	}
	return func() {
		pprofStopCPUProfile()
		if err := f.Close(); err != nil {
			logger.Warningf("could not close CPU profile %s: %v", file, err)
		}
	}
}

// DoMemProfiling rewrites the heap profile in file every memProfilingInterval.
// The returned function writes a last profile and stops the periodic writes.
func DoMemProfiling(file string) func() {
	write := func() {
		f, err := osCreate(file)
		if err != nil {
			logger.Errorf("could not create memory profile %s: %v", file, err)
			return
		}
		defer func() {
			_ = f.Close()
		}()
		if err = pprofWriteHeapProfile(f); err != nil {
			logger.Errorf("could not write memory profile: %v", err)
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	interval := memProfilingInterval
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				write()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			write()
		})
	}
}
