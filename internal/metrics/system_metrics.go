package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostCollector samples the host, the Go runtime and the data file backing the
// file store. An empty dataFile leaves the data file gauges unset, which is the
// case for the memory and couchbase backends.
type HostCollector struct {
	dataFile string

	cpuUsage    *prometheus.GaugeVec
	memoryUsage *prometheus.GaugeVec

	goroutines prometheus.Gauge
	heapAlloc  prometheus.Gauge
	gcPauses   prometheus.Histogram
	lastNumGC  uint32

	dataFileBytes    prometheus.Gauge
	dataFileModified prometheus.Gauge
	dataFilePresent  prometheus.Gauge

	startTime prometheus.Gauge

	mu sync.Mutex
}

// NewHostCollector builds the gauges without registering them.
func NewHostCollector(dataFile string) *HostCollector {
	return &HostCollector{
		dataFile: dataFile,
		cpuUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "CPU usage percentage per core",
		}, []string{"core"}),
		memoryUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "system_memory_usage_bytes",
			Help: "Host memory in bytes by kind",
		}, []string{"type"}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patients_go_goroutines",
			Help: "Goroutines alive in the service",
		}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patients_go_heap_alloc_bytes",
			Help: "Heap bytes allocated and still in use",
		}),
		gcPauses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "patients_go_gc_pause_seconds",
			Help:    "GC pauses observed between two collection cycles",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		dataFileBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patients_data_file_bytes",
			Help: "Size of the patient data file",
		}),
		dataFileModified: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patients_data_file_modified_timestamp_seconds",
			Help: "Last modification time of the patient data file",
		}),
		dataFilePresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patients_data_file_present",
			Help: "1 when the patient data file exists, 0 before the first save",
		}),
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds",
		}),
	}
}

// Register adds every gauge to reg.
func (hc *HostCollector) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		hc.cpuUsage,
		hc.memoryUsage,
		hc.goroutines,
		hc.heapAlloc,
		hc.gcPauses,
		hc.dataFileBytes,
		hc.dataFileModified,
		hc.dataFilePresent,
		hc.startTime,
	} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering host metric: %w", err)
		}
	}
	return nil
}

// Collect runs one sampling cycle.
func (hc *HostCollector) Collect() {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.collectHost()
	hc.collectRuntime()
	hc.collectDataFile()
}

func (hc *HostCollector) collectHost() {
	if percentages, err := cpu.Percent(0, true); err == nil {
		for i, pct := range percentages {
			hc.cpuUsage.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(pct)
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		hc.memoryUsage.WithLabelValues("total").Set(float64(vm.Total))
		hc.memoryUsage.WithLabelValues("available").Set(float64(vm.Available))
		hc.memoryUsage.WithLabelValues("used").Set(float64(vm.Used))
	}
}

func (hc *HostCollector) collectRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	hc.goroutines.Set(float64(runtime.NumGoroutine()))
	hc.heapAlloc.Set(float64(m.HeapAlloc))

	// PauseNs is a ring of the last 256 pauses.
	fresh := m.NumGC - hc.lastNumGC
	if fresh > 256 {
		fresh = 256
	}
	for i := uint32(0); i < fresh; i++ {
		pause := m.PauseNs[(m.NumGC-i+255)%256]
		hc.gcPauses.Observe(time.Duration(pause).Seconds())
	}
	hc.lastNumGC = m.NumGC
}

func (hc *HostCollector) collectDataFile() {
	if hc.dataFile == "" {
		return
	}

	info, err := os.Stat(hc.dataFile)
	switch {
	case err == nil:
		hc.dataFilePresent.Set(1)
		hc.dataFileBytes.Set(float64(info.Size()))
		hc.dataFileModified.Set(float64(info.ModTime().Unix()))
	case errors.Is(err, fs.ErrNotExist):
		hc.dataFilePresent.Set(0)
		hc.dataFileBytes.Set(0)
	default:
		log.Warn().Err(err).Str("path", hc.dataFile).Msg("Failed to stat data file")
	}
}

var systemMetricsOnce sync.Once

// StartSystemMetrics registers a HostCollector on Registry and samples every
// interval until ctx is cancelled. Only the first call has any effect.
func StartSystemMetrics(ctx context.Context, interval time.Duration, dataFile string) {
	systemMetricsOnce.Do(func() {
		hc := NewHostCollector(dataFile)
		if err := hc.Register(Registry()); err != nil {
			log.Error().Err(err).Msg("System metrics disabled")
			return
		}
		hc.startTime.Set(float64(time.Now().Unix()))
		hc.Collect()

		log.Info().
			Dur("interval", interval).
			Str("data_file", dataFile).
			Msg("System metrics started")

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					hc.Collect()
				}
			}
		}()
	})
}
