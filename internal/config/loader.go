package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of over onto base. Booleans from the
// file are only applied when they differ from the zero value, so a config
// file can enable but not silently disable defaults; disabling is done via
// the environment, which carries explicit set/unset information.
func Merge(base, over Config) Config {
	if over.MemoryLimitGB != 0 {
		base.MemoryLimitGB = over.MemoryLimitGB
	}
	if over.MaxCUDAVRAMGB != 0 {
		base.MaxCUDAVRAMGB = over.MaxCUDAVRAMGB
	}
	if over.MaxDurationSeconds != 0 {
		base.MaxDurationSeconds = over.MaxDurationSeconds
	}
	if over.MaxBatchSize != 0 {
		base.MaxBatchSize = over.MaxBatchSize
	}
	if over.PyTorchAllocConf != "" {
		base.PyTorchAllocConf = over.PyTorchAllocConf
	}
	if over.TokenizersParallelism != "" {
		base.TokenizersParallelism = over.TokenizersParallelism
	}
	if over.APIHost != "" {
		base.APIHost = over.APIHost
	}
	if over.APIPort != 0 {
		base.APIPort = over.APIPort
	}
	if over.APILogLevel != "" {
		base.APILogLevel = over.APILogLevel
	}
	if over.WebHost != "" {
		base.WebHost = over.WebHost
	}
	if over.WebPort != 0 {
		base.WebPort = over.WebPort
	}
	if over.AuthUsername != "" {
		base.AuthUsername = over.AuthUsername
	}
	if over.AuthPassword != "" {
		base.AuthPassword = over.AuthPassword
	}
	if over.InitLMDefault {
		base.InitLMDefault = true
	}
	if over.LMModelPath != "" {
		base.LMModelPath = over.LMModelPath
	}
	if over.LMBackend != "" {
		base.LMBackend = over.LMBackend
	}
	if over.LogsDir != "" {
		base.LogsDir = over.LogsDir
	}
	if over.PythonBin != "" {
		base.PythonBin = over.PythonBin
	}
	if over.VenvDir != "" {
		base.VenvDir = over.VenvDir
	}
	if over.ControlAddr != "" {
		base.ControlAddr = over.ControlAddr
	}
	return base
}
