// Package sysinfo samples host figures for the stats screen and the
// status command.
package sysinfo

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is one sample of the host state.
type Snapshot struct {
	Uptime            time.Duration
	Load1             float64
	MemUsedPercent    float64
	RootFSUsedPercent float64
	// CPUTempC is zero when no thermal sensor reports, which is normal
	// on some boards.
	CPUTempC  float64
	SampledAt time.Time
}

// Collect samples the host. Individual probes that fail leave their zero
// value; a partial sample is still worth showing.
func Collect(ctx context.Context) Snapshot {
	snap := Snapshot{SampledAt: time.Now()}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		snap.Uptime = time.Duration(up) * time.Second
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		snap.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemUsedPercent = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		snap.RootFSUsedPercent = du.UsedPercent
	}
	if temps, err := host.SensorsTemperaturesWithContext(ctx); err == nil {
		for _, s := range temps {
			key := strings.ToLower(s.SensorKey)
			if strings.Contains(key, "cpu") || strings.Contains(key, "coretemp") {
				snap.CPUTempC = s.Temperature
				break
			}
		}
	}
	return snap
}
