// Package config assembles the runtime configuration for acestepd from,
// in rising precedence: built-in defaults, an optional config file
// (ACESTEP_CONFIG_PATH), a .env file, and the process environment.
// A variable set in the calling shell always wins over the .env file.
package config

import "fmt"

// Config holds every tunable the launcher and the spawned ACE-Step
// processes consume.
type Config struct {
	// Memory limits
	MemoryLimitGB float64 `json:"memory_limit_gb" yaml:"memory_limit_gb" toml:"memory_limit_gb"`
	MaxCUDAVRAMGB float64 `json:"max_cuda_vram_gb" yaml:"max_cuda_vram_gb" toml:"max_cuda_vram_gb"`

	// Offload / model placement
	OffloadToCPU    bool `json:"offload_to_cpu" yaml:"offload_to_cpu" toml:"offload_to_cpu"`
	OffloadDiTToCPU bool `json:"offload_dit_to_cpu" yaml:"offload_dit_to_cpu" toml:"offload_dit_to_cpu"`
	InitLMDefault   bool `json:"init_lm_default" yaml:"init_lm_default" toml:"init_lm_default"`

	// Generation caps
	MaxDurationSeconds int `json:"max_duration_seconds" yaml:"max_duration_seconds" toml:"max_duration_seconds"`
	MaxBatchSize       int `json:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`

	// Passthrough to the Python runtime
	PyTorchAllocConf      string `json:"pytorch_cuda_alloc_conf" yaml:"pytorch_cuda_alloc_conf" toml:"pytorch_cuda_alloc_conf"`
	TokenizersParallelism string `json:"tokenizers_parallelism" yaml:"tokenizers_parallelism" toml:"tokenizers_parallelism"`

	// REST API server (uvicorn)
	APIHost     string `json:"api_host" yaml:"api_host" toml:"api_host"`
	APIPort     int    `json:"api_port" yaml:"api_port" toml:"api_port"`
	APILogLevel string `json:"api_log_level" yaml:"api_log_level" toml:"api_log_level"`

	// Gradio web UI server
	WebHost string `json:"web_host" yaml:"web_host" toml:"web_host"`
	WebPort int    `json:"web_port" yaml:"web_port" toml:"web_port"`

	// Auth passed to the UI/API servers
	AuthEnabled  bool   `json:"auth_enabled" yaml:"auth_enabled" toml:"auth_enabled"`
	AuthUsername string `json:"auth_username" yaml:"auth_username" toml:"auth_username"`
	AuthPassword string `json:"auth_password" yaml:"auth_password" toml:"auth_password"`

	// LM component
	LMModelPath string `json:"lm_model_path" yaml:"lm_model_path" toml:"lm_model_path"`
	LMBackend   string `json:"lm_backend" yaml:"lm_backend" toml:"lm_backend"`

	// Launcher
	ConfigPath  string `json:"config_path" yaml:"config_path" toml:"config_path"`
	LogsDir     string `json:"logs_dir" yaml:"logs_dir" toml:"logs_dir"`
	PythonBin   string `json:"python_bin" yaml:"python_bin" toml:"python_bin"`
	VenvDir     string `json:"venv_dir" yaml:"venv_dir" toml:"venv_dir"`
	ControlAddr string `json:"control_addr" yaml:"control_addr" toml:"control_addr"`
}

// Environment variable names for the full launch surface.
const (
	EnvMemoryLimitGB    = "ACESTEP_MEMORY_LIMIT_GB"
	EnvMaxCUDAVRAM      = "MAX_CUDA_VRAM"
	EnvOffloadToCPU     = "ACESTEP_OFFLOAD_TO_CPU"
	EnvOffloadDiTToCPU  = "ACESTEP_OFFLOAD_DIT_TO_CPU"
	EnvInitLMDefault    = "ACESTEP_INIT_LM_DEFAULT"
	EnvMaxDuration      = "ACESTEP_MAX_DURATION"
	EnvMaxBatchSize     = "ACESTEP_MAX_BATCH_SIZE"
	EnvPyTorchAllocConf = "PYTORCH_CUDA_ALLOC_CONF"
	EnvTokenizers       = "TOKENIZERS_PARALLELISM"
	EnvAPIHost          = "ACESTEP_API_HOST"
	EnvAPIPort          = "ACESTEP_API_PORT"
	EnvAPILogLevel      = "ACESTEP_API_LOG_LEVEL"
	EnvWebHost          = "ACESTEP_WEB_HOST"
	EnvWebPort          = "ACESTEP_WEB_PORT"
	EnvAuthEnabled      = "ACESTEP_AUTH_ENABLED"
	EnvAuthUsername     = "ACESTEP_AUTH_USERNAME"
	EnvAuthPassword     = "ACESTEP_AUTH_PASSWORD"
	EnvLMModelPath      = "ACESTEP_LM_MODEL_PATH"
	EnvLMBackend        = "ACESTEP_LM_BACKEND"
	EnvConfigPath       = "ACESTEP_CONFIG_PATH"
	EnvLogsDir          = "ACESTEP_LOGS_DIR"
	EnvPythonBin        = "ACESTEP_PYTHON"
	EnvVenvDir          = "ACESTEP_VENV"
	EnvControlAddr      = "ACESTEPD_ADDR"
)

// Defaults returns the documented default configuration.
func Defaults() Config {
	return Config{
		MemoryLimitGB:         4.0,
		OffloadToCPU:          true,
		OffloadDiTToCPU:       true,
		InitLMDefault:         false,
		MaxDurationSeconds:    120,
		MaxBatchSize:          1,
		PyTorchAllocConf:      "garbage_collection_threshold:0.6,max_split_size_mb:128",
		TokenizersParallelism: "false",
		APIHost:               "127.0.0.1",
		APIPort:               8019,
		APILogLevel:           "info",
		WebHost:               "127.0.0.1",
		WebPort:               7865,
		AuthEnabled:           true,
		AuthUsername:          "admin",
		AuthPassword:          "music2026",
		LMBackend:             "transformers",
		LogsDir:               "logs",
		PythonBin:             "python3",
		VenvDir:               ".venv",
		ControlAddr:           "127.0.0.1:8900",
	}
}

// Validate rejects configurations that cannot possibly launch.
func (c Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port out of range: %d", c.APIPort)
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port out of range: %d", c.WebPort)
	}
	if c.MemoryLimitGB <= 0 {
		return fmt.Errorf("memory_limit_gb must be positive, got %g", c.MemoryLimitGB)
	}
	if c.MaxDurationSeconds <= 0 {
		return fmt.Errorf("max_duration_seconds must be positive, got %d", c.MaxDurationSeconds)
	}
	if c.AuthEnabled && (c.AuthUsername == "" || c.AuthPassword == "") {
		return fmt.Errorf("auth enabled but username or password empty")
	}
	return nil
}
