package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenv loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the calling shell are never overwritten, and a
// missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	// godotenv.Load does not override variables already present.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays environment variables onto cfg. Only variables that are
// actually set are applied, so file/default values survive when the
// environment is silent.
func FromEnv(cfg Config) Config {
	overlayFloat(&cfg.MemoryLimitGB, EnvMemoryLimitGB)
	overlayFloat(&cfg.MaxCUDAVRAMGB, EnvMaxCUDAVRAM)
	overlayBool(&cfg.OffloadToCPU, EnvOffloadToCPU)
	overlayBool(&cfg.OffloadDiTToCPU, EnvOffloadDiTToCPU)
	overlayBool(&cfg.InitLMDefault, EnvInitLMDefault)
	overlayInt(&cfg.MaxDurationSeconds, EnvMaxDuration)
	overlayInt(&cfg.MaxBatchSize, EnvMaxBatchSize)
	overlayStr(&cfg.PyTorchAllocConf, EnvPyTorchAllocConf)
	overlayStr(&cfg.TokenizersParallelism, EnvTokenizers)
	overlayStr(&cfg.APIHost, EnvAPIHost)
	overlayInt(&cfg.APIPort, EnvAPIPort)
	overlayStr(&cfg.APILogLevel, EnvAPILogLevel)
	overlayStr(&cfg.WebHost, EnvWebHost)
	overlayInt(&cfg.WebPort, EnvWebPort)
	overlayBool(&cfg.AuthEnabled, EnvAuthEnabled)
	overlayStr(&cfg.AuthUsername, EnvAuthUsername)
	overlayStr(&cfg.AuthPassword, EnvAuthPassword)
	overlayStr(&cfg.LMModelPath, EnvLMModelPath)
	overlayStr(&cfg.LMBackend, EnvLMBackend)
	overlayStr(&cfg.ConfigPath, EnvConfigPath)
	overlayStr(&cfg.LogsDir, EnvLogsDir)
	overlayStr(&cfg.PythonBin, EnvPythonBin)
	overlayStr(&cfg.VenvDir, EnvVenvDir)
	overlayStr(&cfg.ControlAddr, EnvControlAddr)
	return cfg
}

// Resolve builds the effective Config: defaults, then the optional config
// file named by ACESTEP_CONFIG_PATH (or cfgPath), then the environment.
// envFile is loaded into the environment first.
func Resolve(envFile, cfgPath string) (Config, error) {
	if err := LoadDotenv(envFile); err != nil {
		return Config{}, err
	}
	cfg := Defaults()
	if cfgPath == "" {
		cfgPath = os.Getenv(EnvConfigPath)
	}
	if cfgPath != "" {
		fileCfg, err := LoadFile(cfgPath)
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, fileCfg)
		cfg.ConfigPath = cfgPath
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseBool mirrors the accepted truthy spellings of the launch scripts.
func ParseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func overlayStr(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overlayBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = ParseBool(v, *dst)
	}
}

func overlayInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func overlayFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = f
		}
	}
}
