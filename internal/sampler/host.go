package sampler

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Reference metric names. CPU is a percentage (0-100) aggregated across
// all cores; MEM is resident memory in kilobytes; LOAD1 is the 1-minute
// load average (opt-in, Unix only).
const (
	MetricCPU   = "CPU"
	MetricMem   = "MEM"
	MetricLoad1 = "LOAD1"
)

// CPUPercent returns aggregate CPU utilization since the previous call
// (interval 0 = delta since last read). Returns 0 on failure.
func CPUPercent() float64 {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return 0
	}
	return percents[0]
}

// MemoryUsedKB returns used physical memory in kilobytes, 0 on failure.
func MemoryUsedKB() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return 0
	}
	return float64(vm.Used) / 1024
}

// Load1 returns the 1-minute load average, 0 on failure.
func Load1() float64 {
	avg, err := load.Avg()
	if err != nil || avg == nil {
		return 0
	}
	return avg.Load1
}

// HostRegistry returns a registry preloaded with the reference host
// metrics. withLoad additionally registers LOAD1.
func HostRegistry(withLoad bool) *Registry {
	r := NewRegistry()
	r.Register(MetricCPU, CPUPercent)
	r.Register(MetricMem, MemoryUsedKB)
	if withLoad {
		r.Register(MetricLoad1, Load1)
	}
	return r
}
