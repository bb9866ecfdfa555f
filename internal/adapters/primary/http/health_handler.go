package http

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// RelayStats exposes hub statistics for the health endpoints
type RelayStats interface {
	ConnectionCount() int
	RoomCount() int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	relay     RelayStats
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(relay RelayStats, version string) *HealthHandler {
	return &HealthHandler{
		relay:     relay,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version,omitempty"`
	Uptime      string `json:"uptime,omitempty"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// HandleLiveness handles liveness probe requests (is the service running?)
// Used by Kubernetes to know when to restart a container
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// HandleReadiness handles readiness probe requests (can the service accept
// traffic?). The relay has no external dependencies: if the process is up,
// it can accept connections.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Connections: h.relay.ConnectionCount(),
		Rooms:       h.relay.RoomCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// HandleHealth handles detailed health check requests (for monitoring/debugging)
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := struct {
		HealthResponse
		Memory struct {
			Alloc      uint64 `json:"alloc_bytes"`
			TotalAlloc uint64 `json:"total_alloc_bytes"`
			Sys        uint64 `json:"sys_bytes"`
			NumGC      uint32 `json:"num_gc"`
		} `json:"memory"`
		Goroutines int `json:"goroutines"`
	}{
		HealthResponse: HealthResponse{
			Status:      "healthy",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Version:     h.version,
			Uptime:      time.Since(h.startTime).Round(time.Second).String(),
			Connections: h.relay.ConnectionCount(),
			Rooms:       h.relay.RoomCount(),
		},
		Goroutines: runtime.NumGoroutine(),
	}
	response.Memory.Alloc = memStats.Alloc
	response.Memory.TotalAlloc = memStats.TotalAlloc
	response.Memory.Sys = memStats.Sys
	response.Memory.NumGC = memStats.NumGC

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
