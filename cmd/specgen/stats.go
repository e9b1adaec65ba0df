package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

// procStats is the resource usage of the current process.
type procStats struct {
	RSS uint64
	CPU time.Duration
}

func currentStats() (procStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return procStats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return procStats{}, err
	}
	times, err := p.Times()
	if err != nil {
		return procStats{}, err
	}
	cpu := time.Duration((times.User + times.System) * float64(time.Second))
	return procStats{RSS: mem.RSS, CPU: cpu}, nil
}

func printStats(w io.Writer, log zerolog.Logger) {
	st, err := currentStats()
	if err != nil {
		log.Warn().Err(err).Msg("process stats unavailable")
		return
	}
	fmt.Fprintf(w, "%s\n", styleDim.Render(fmt.Sprintf("rss %.1f MiB, cpu %s", float64(st.RSS)/(1<<20), st.CPU.Round(time.Millisecond))))
}
