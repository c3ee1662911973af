package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	systemCPUPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_cpu_usage_percent",
		Help: "Host CPU utilization percentage",
	})
	systemMemPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_usage_percent",
		Help: "Host memory utilization percentage",
	})
	systemDiskPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_disk_usage_percent",
		Help: "Root filesystem utilization percentage",
	})
)

// SystemCollector samples host CPU, memory and disk usage on an
// interval and exports them as Prometheus gauges.
type SystemCollector struct {
	interval time.Duration
	stop     chan struct{}
}

func NewSystemCollector(interval time.Duration) *SystemCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SystemCollector{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine.
func (c *SystemCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.sample()
		for {
			select {
			case <-ticker.C:
				c.sample()
			case <-c.stop:
				return
			}
		}
	}()
	log.Printf("[Metrics] System collector started (interval %s)", c.interval)
}

// Stop halts the sampling goroutine.
func (c *SystemCollector) Stop() {
	close(c.stop)
}

func (c *SystemCollector) sample() {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		systemCPUPercent.Set(percents[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		systemMemPercent.Set(vm.UsedPercent)
	}
	if du, err := disk.Usage("/"); err == nil {
		systemDiskPercent.Set(du.UsedPercent)
	}
}
