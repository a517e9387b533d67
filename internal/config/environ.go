package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"acestepd/internal/common/fsutil"
)

// Environ renders the full export set passed to spawned ACE-Step processes.
// This is the Go equivalent of the launch scripts' export block: every
// variable the pipeline consumes is pinned explicitly so a child never
// depends on what happened to be in the calling shell.
func (c Config) Environ() map[string]string {
	env := map[string]string{
		EnvMemoryLimitGB:    formatFloat(c.MemoryLimitGB),
		EnvOffloadToCPU:     strconv.FormatBool(c.OffloadToCPU),
		EnvOffloadDiTToCPU:  strconv.FormatBool(c.OffloadDiTToCPU),
		EnvInitLMDefault:    strconv.FormatBool(c.InitLMDefault),
		EnvMaxDuration:      strconv.Itoa(c.MaxDurationSeconds),
		EnvMaxBatchSize:     strconv.Itoa(c.MaxBatchSize),
		EnvPyTorchAllocConf: c.PyTorchAllocConf,
		EnvTokenizers:       c.TokenizersParallelism,
		EnvAPIHost:          c.APIHost,
		EnvAPIPort:          strconv.Itoa(c.APIPort),
		EnvAPILogLevel:      c.APILogLevel,
		EnvAuthEnabled:      strconv.FormatBool(c.AuthEnabled),
		EnvAuthUsername:     c.AuthUsername,
		EnvAuthPassword:     c.AuthPassword,
	}
	if c.MaxCUDAVRAMGB > 0 {
		env[EnvMaxCUDAVRAM] = formatFloat(c.MaxCUDAVRAMGB)
	}
	if c.LMModelPath != "" {
		env[EnvLMModelPath] = c.LMModelPath
	}
	if c.LMBackend != "" {
		env[EnvLMBackend] = c.LMBackend
	}
	if c.ConfigPath != "" {
		env[EnvConfigPath] = c.ConfigPath
	}
	return env
}

// Python resolves the interpreter to launch: the venv interpreter when the
// configured venv exists, otherwise the configured python binary.
func (c Config) Python() string {
	if c.VenvDir != "" {
		venv, err := fsutil.ExpandHome(c.VenvDir)
		if err == nil {
			py := filepath.Join(venv, "bin", "python")
			if fsutil.PathExists(py) {
				return py
			}
		}
	}
	if c.PythonBin != "" {
		return c.PythonBin
	}
	return "python3"
}

// VenvPath returns the PATH entry for the venv bin dir, or "" when the
// venv is absent.
func (c Config) VenvPath() string {
	if c.VenvDir == "" {
		return ""
	}
	venv, err := fsutil.ExpandHome(c.VenvDir)
	if err != nil {
		return ""
	}
	bin := filepath.Join(venv, "bin")
	if !fsutil.PathExists(bin) {
		return ""
	}
	return bin + string(os.PathListSeparator) + os.Getenv("PATH")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// APIBaseURL is the address the REST API server will listen on.
func (c Config) APIBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.APIHost, c.APIPort)
}

// WebBaseURL is the address the Gradio UI will listen on.
func (c Config) WebBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.WebHost, c.WebPort)
}
