package types

// MemoryUsage is a combined snapshot of host, process and GPU memory in GB.
type MemoryUsage struct {
	// Total installed RAM in GB.
	// example: 15.6
	RAMTotalGB float64 `json:"ram_total_gb" example:"15.6"`
	// RAM currently in use in GB.
	// example: 7.2
	RAMUsedGB float64 `json:"ram_used_gb" example:"7.2"`
	// RAM available for new allocations in GB.
	// example: 8.4
	RAMAvailableGB float64 `json:"ram_available_gb" example:"8.4"`
	// Completely free RAM in GB.
	// example: 3.1
	RAMFreeGB float64 `json:"ram_free_gb" example:"3.1"`
	// Resident set size of this process in GB.
	// example: 0.05
	ProcessGB float64 `json:"process_memory_gb" example:"0.05"`
	// Total VRAM on the first GPU in GB (0 when no GPU is visible).
	// example: 12.0
	GPUTotalGB float64 `json:"gpu_total_gb" example:"12.0"`
	// VRAM currently allocated in GB.
	// example: 4.5
	GPUUsedGB float64 `json:"gpu_used_gb" example:"4.5"`
	// VRAM still available in GB.
	// example: 7.5
	GPUAvailableGB float64 `json:"gpu_available_gb" example:"7.5"`
}

// Constraints are the generation limits currently in force, derived from
// the configured caps and the live memory tier.
type Constraints struct {
	// Maximum generation duration in seconds under the current tier.
	// example: 120
	MaxDurationSeconds int `json:"max_duration_seconds" example:"120"`
	// Maximum batch size (always 1).
	// example: 1
	MaxBatchSize int `json:"max_batch_size" example:"1"`
	// Whether the auxiliary LM is allowed right now.
	// example: false
	LMEnabled bool `json:"lm_enabled" example:"false"`
	// Whether VAE/decoder weights are offloaded to host memory.
	// example: true
	OffloadToCPU bool `json:"offload_to_cpu" example:"true"`
	// Whether DiT weights are offloaded to host memory.
	// example: true
	OffloadDiTToCPU bool `json:"offload_dit_to_cpu" example:"true"`
	// Configured memory limit in GB.
	// example: 4.0
	MemoryLimitGB float64 `json:"memory_limit_gb" example:"4.0"`
	// RAM available when the constraints were computed.
	// example: 8.4
	AvailableMemoryGB float64 `json:"available_memory_gb" example:"8.4"`
	// Memory tier: critical, low, normal or optimal.
	// example: normal
	MemoryTier string `json:"memory_tier" example:"normal"`
	// Hard floor of free RAM that must be preserved.
	// example: 5.0
	MinFreeRAMGB float64 `json:"min_free_ram_gb" example:"5.0"`
}

// MemoryConfigView is the externally visible slice of the memory config.
type MemoryConfigView struct {
	// example: 4.0
	MaxMemoryGB float64 `json:"max_memory_gb" example:"4.0"`
	// example: 5.0
	MinFreeRAMGB float64 `json:"min_free_ram_gb" example:"5.0"`
	// example: true
	OffloadEnabled bool `json:"offload_enabled" example:"true"`
	// example: false
	LMEnabled bool `json:"lm_enabled" example:"false"`
	// example: true
	AggressiveGC bool `json:"aggressive_gc" example:"true"`
}

// MemoryStatus is the full memory report returned by GET /memory and by
// the status self-test.
type MemoryStatus struct {
	// Effective memory configuration.
	Config MemoryConfigView `json:"config"`
	// Live usage snapshot.
	Usage MemoryUsage `json:"current_usage"`
	// Limits in force.
	Constraints Constraints `json:"constraints"`
	// True while free RAM stays above the hard floor.
	// example: true
	Healthy bool `json:"healthy" example:"true"`
	// Number of generations admitted since startup.
	// example: 3
	GenerationCount uint64 `json:"generation_count" example:"3"`
}

// ProcessStatus summarizes one supervised server process.
type ProcessStatus struct {
	// Logical process name (web, api).
	// example: api
	Name string `json:"name" example:"api"`
	// Lifecycle state: starting, ready, exited, stopped.
	// example: ready
	State string `json:"state" example:"ready"`
	// OS process id, 0 when not running.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Unix time the process was started.
	// example: 1700000000
	StartedUnix int64 `json:"started_unix,omitempty" example:"1700000000"`
	// Health URL polled for readiness, if any.
	// example: http://127.0.0.1:8019/health
	HealthURL string `json:"health_url,omitempty" example:"http://127.0.0.1:8019/health"`
	// Log file receiving this process's output.
	// example: logs/api_server.log
	LogFile string `json:"log_file,omitempty" example:"logs/api_server.log"`
	// Exit error message when state is exited.
	Error string `json:"error,omitempty"`
}

// SecurityStatus reports the active security policy for monitoring.
type SecurityStatus struct {
	// example: true
	AuthEnabled bool `json:"auth_enabled" example:"true"`
	// example: false
	APIKeyConfigured bool `json:"api_key_configured" example:"false"`
	// example: 30
	RateLimitPerMinute int `json:"rate_limit_per_minute" example:"30"`
	// example: 20
	GenerationLimitPerHour int `json:"generation_limit_per_hour" example:"20"`
	// example: false
	LocalhostOnly bool `json:"localhost_only" example:"false"`
	// example: 0
	AllowedIPCount int `json:"allowed_ips_count" example:"0"`
	// example: 0
	BlockedIPCount int `json:"blocked_ips_count" example:"0"`
	// example: 60
	SessionTimeoutMinutes int `json:"session_timeout_minutes" example:"60"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Supervised processes.
	Processes []ProcessStatus `json:"processes"`
	// Memory report.
	Memory MemoryStatus `json:"memory"`
	// Security policy summary.
	Security SecurityStatus `json:"security"`
	// Uptime of the supervisor in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// AdmissionRequest asks whether a generation may start and with which
// clamped parameters.
type AdmissionRequest struct {
	// Estimated memory need of the generation in GB.
	// example: 2.0
	EstimatedGB float64 `json:"estimated_gb,omitempty" example:"2.0"`
	// Requested duration in seconds.
	// example: 180
	DurationSeconds float64 `json:"duration_seconds,omitempty" example:"180"`
	// Requested batch size.
	// example: 1
	BatchSize int `json:"batch_size,omitempty" example:"1"`
}

// AdmissionResponse is the gate's answer.
type AdmissionResponse struct {
	// Whether the generation may proceed.
	// example: true
	Allowed bool `json:"allowed" example:"true"`
	// Refusal or caution message, empty when all clear.
	Message string `json:"message,omitempty"`
	// Duration after clamping.
	// example: 120
	DurationSeconds float64 `json:"duration_seconds" example:"120"`
	// Batch size after clamping.
	// example: 1
	BatchSize int `json:"batch_size" example:"1"`
	// Clamp warnings, if any parameters were adjusted.
	Warnings []string `json:"warnings,omitempty"`
	// Generations left in the caller's quota window.
	// example: 17
	RemainingQuota int `json:"remaining_quota" example:"17"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: rate limit exceeded
	Error string `json:"error" example:"rate limit exceeded"`
	// HTTP status code.
	// example: 429
	Code int `json:"code" example:"429"`
}
