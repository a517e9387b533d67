package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvironRendersExports(t *testing.T) {
	cfg := Defaults()
	cfg.MaxCUDAVRAMGB = 6.5
	cfg.LMModelPath = "/models/lm.bin"
	env := cfg.Environ()

	want := map[string]string{
		EnvMemoryLimitGB:    "4",
		EnvOffloadToCPU:     "true",
		EnvOffloadDiTToCPU:  "true",
		EnvInitLMDefault:    "false",
		EnvMaxDuration:      "120",
		EnvMaxBatchSize:     "1",
		EnvPyTorchAllocConf: "garbage_collection_threshold:0.6,max_split_size_mb:128",
		EnvTokenizers:       "false",
		EnvMaxCUDAVRAM:      "6.5",
		EnvLMModelPath:      "/models/lm.bin",
	}
	for k, v := range want {
		if env[k] != v {
			t.Fatalf("%s=%q want %q", k, env[k], v)
		}
	}
}

func TestEnvironOmitsUnsetOptionals(t *testing.T) {
	env := Defaults().Environ()
	if _, ok := env[EnvMaxCUDAVRAM]; ok {
		t.Fatalf("MAX_CUDA_VRAM should be absent when unset")
	}
	if _, ok := env[EnvLMModelPath]; ok {
		t.Fatalf("LM model path should be absent when unset")
	}
}

func TestBaseURLs(t *testing.T) {
	cfg := Defaults()
	if got := cfg.APIBaseURL(); got != "http://127.0.0.1:8019" {
		t.Fatalf("api base url: %q", got)
	}
	if got := cfg.WebBaseURL(); got != "http://127.0.0.1:7865" {
		t.Fatalf("web base url: %q", got)
	}
}

func TestPythonPrefersVenv(t *testing.T) {
	d := t.TempDir()
	cfg := Defaults()
	cfg.VenvDir = d
	cfg.PythonBin = "python3"

	// No venv interpreter yet: fall back to the configured binary.
	if got := cfg.Python(); got != "python3" {
		t.Fatalf("expected fallback python3, got %q", got)
	}

	bin := filepath.Join(d, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	py := filepath.Join(bin, "python")
	if err := os.WriteFile(py, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := cfg.Python(); got != py {
		t.Fatalf("expected venv python %q, got %q", py, got)
	}
	if p := cfg.VenvPath(); p == "" {
		t.Fatalf("expected venv PATH entry")
	}
}
