package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/challenge-tracker/internal/broadcast"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Tracker       TrackerMetrics   `json:"tracker"`
	Broadcast     broadcast.Stats  `json:"broadcast"`
	MQTT          *SinkMetrics     `json:"mqtt,omitempty"`
	InfluxDB      *SinkMetrics     `json:"influxdb,omitempty"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// TrackerMetrics summarises session progress.
type TrackerMetrics struct {
	ActiveTask   int `json:"active_task"`
	Participants int `json:"participants"`

	// Completions counts participants per completed task, keyed "task1".."task6".
	Completions map[string]int `json:"completions"`
}

// SinkMetrics reports an optional output's connection state.
type SinkMetrics struct {
	Connected bool `json:"connected"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns runtime, tracker and delivery metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	// Collect runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := s.tracker.Stats()
	completions := make(map[string]int, len(stats.Completions))
	for id, n := range stats.Completions {
		completions[id.String()] = n
	}

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Tracker: TrackerMetrics{
			ActiveTask:   int(stats.ActiveTask),
			Participants: stats.Participants,
			Completions:  completions,
		},
		Broadcast: s.hub.Stats(),
	}

	if s.mqtt != nil {
		metrics.MQTT = &SinkMetrics{Connected: s.mqtt.IsConnected()}
	}
	if s.influx != nil {
		metrics.InfluxDB = &SinkMetrics{Connected: s.influx.IsConnected()}
	}
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
