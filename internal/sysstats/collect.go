package sysstats

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// collect samples current process CPU/memory/uptime. lastSampleAt and
// lastCPUTicks are updated in place so the next call can compute a CPU
// percentage over the elapsed interval.
func collect(now, startedAt time.Time, lastSampleAt *time.Time, lastCPUTicks *float64) model.ServerStats {
	ticks, rss := readProcSelfStat()

	var cpuPercent float64
	if !lastSampleAt.IsZero() {
		elapsed := now.Sub(*lastSampleAt).Seconds()
		if elapsed > 0 {
			cpuSeconds := (ticks - *lastCPUTicks) / clockTicksPerSecond
			cpuPercent = (cpuSeconds / elapsed) * 100
		}
	}
	*lastSampleAt = now
	*lastCPUTicks = ticks

	return model.ServerStats{
		CPUPercent:          cpuPercent,
		ResidentMemoryBytes: rss,
		UptimeMs:            now.Sub(startedAt).Milliseconds(),
	}
}

// readProcSelfStat returns (utime+stime in clock ticks, resident set size in
// bytes). Falls back to runtime.MemStats when /proc is unavailable (e.g. a
// non-Linux development machine).
func readProcSelfStat() (float64, uint64) {
	data, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return 0, m.Sys
	}

	// Field 2 (comm) may contain spaces/parens; start parsing after the last ')'.
	closeParen := strings.LastIndexByte(string(data), ')')
	if closeParen < 0 {
		return 0, 0
	}
	fields := strings.Fields(string(data[closeParen+2:]))
	// After comm, field 1 is state, so utime is field index 11 (0-based) and
	// stime is index 12, per proc(5).
	if len(fields) < 13 {
		return 0, 0
	}
	utime, _ := strconv.ParseFloat(fields[11], 64)
	stime, _ := strconv.ParseFloat(fields[12], 64)

	rss := readVMRSSBytes()
	return utime + stime, rss
}

func readVMRSSBytes() uint64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, _ := strconv.ParseUint(fields[1], 10, 64)
		return kb * 1024
	}
	return 0
}
