package launcher

import (
	"strings"
	"testing"

	"acestepd/internal/config"
)

func TestWebSpec(t *testing.T) {
	cfg := config.Defaults()
	spec := WebSpec(cfg)
	if spec.Name != ProcessWeb {
		t.Fatalf("name=%s", spec.Name)
	}
	args := strings.Join(spec.Args, " ")
	if !strings.Contains(args, "-m acestep.gui") {
		t.Fatalf("args=%q", args)
	}
	if !strings.Contains(args, "--port 7865") {
		t.Fatalf("args=%q", args)
	}
	if spec.HealthURL != "http://127.0.0.1:7865/" {
		t.Fatalf("health=%q", spec.HealthURL)
	}
	if spec.LogFileName != "web_ui.log" {
		t.Fatalf("log=%q", spec.LogFileName)
	}
	if spec.Port != 7865 {
		t.Fatalf("port=%d", spec.Port)
	}
	// the full export block rides along
	if spec.Env["ACESTEP_MEMORY_LIMIT_GB"] == "" || spec.Env["PYTORCH_CUDA_ALLOC_CONF"] == "" {
		t.Fatalf("env incomplete: %v", spec.Env)
	}
}

func TestAPISpec(t *testing.T) {
	cfg := config.Defaults()
	cfg.APILogLevel = "debug"
	spec := APISpec(cfg)
	if spec.Name != ProcessAPI {
		t.Fatalf("name=%s", spec.Name)
	}
	args := strings.Join(spec.Args, " ")
	if !strings.Contains(args, "uvicorn acestep.api_server:app") {
		t.Fatalf("args=%q", args)
	}
	if !strings.Contains(args, "--log-level debug") {
		t.Fatalf("args=%q", args)
	}
	if spec.HealthURL != "http://127.0.0.1:8019/health" {
		t.Fatalf("health=%q", spec.HealthURL)
	}
	if spec.LogFileName != "api_server.log" {
		t.Fatalf("log=%q", spec.LogFileName)
	}
	if spec.Env["TOKENIZERS_PARALLELISM"] != "false" {
		t.Fatalf("env incomplete: %v", spec.Env)
	}
}
