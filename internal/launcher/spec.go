// Package launcher spawns and supervises the external ACE-Step server
// processes (Gradio web UI, uvicorn REST API): environment assembly, log
// capture with rotation, readiness polling and graceful termination.
package launcher

import (
	"fmt"
	"strconv"
	"time"

	"acestepd/internal/config"
)

// Well-known process names.
const (
	ProcessWeb = "web"
	ProcessAPI = "api"
)

// Spec describes one launchable server process.
type Spec struct {
	// Logical name, unique within the supervisor.
	Name string
	// Command and arguments to execute.
	Command string
	Args    []string
	// Env is overlaid on the inherited environment.
	Env map[string]string
	// Host and Port the process will bind. Port > 0 enables the
	// pre-start busy check.
	Host string
	Port int
	// HealthURL, when set, is polled until it answers 2xx.
	HealthURL string
	// LogFileName is the file under the logs dir receiving output.
	LogFileName string
	// ReadyTimeout bounds the readiness wait. Zero selects the default.
	ReadyTimeout time.Duration
}

// WebSpec builds the Gradio web UI launch spec.
func WebSpec(cfg config.Config) Spec {
	env := cfg.Environ()
	if p := cfg.VenvPath(); p != "" {
		env["PATH"] = p
	}
	return Spec{
		Name:    ProcessWeb,
		Command: cfg.Python(),
		Args: []string{
			"-m", "acestep.gui",
			"--server-name", cfg.WebHost,
			"--port", strconv.Itoa(cfg.WebPort),
		},
		Env:         env,
		Host:        cfg.WebHost,
		Port:        cfg.WebPort,
		HealthURL:   cfg.WebBaseURL() + "/",
		LogFileName: "web_ui.log",
	}
}

// APISpec builds the uvicorn REST API launch spec.
func APISpec(cfg config.Config) Spec {
	env := cfg.Environ()
	if p := cfg.VenvPath(); p != "" {
		env["PATH"] = p
	}
	return Spec{
		Name:    ProcessAPI,
		Command: cfg.Python(),
		Args: []string{
			"-m", "uvicorn", "acestep.api_server:app",
			"--host", cfg.APIHost,
			"--port", strconv.Itoa(cfg.APIPort),
			"--log-level", cfg.APILogLevel,
		},
		Env:         env,
		Host:        cfg.APIHost,
		Port:        cfg.APIPort,
		HealthURL:   cfg.APIBaseURL() + "/health",
		LogFileName: "api_server.log",
	}
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("process spec has no name")
	}
	if s.Command == "" {
		return fmt.Errorf("process %q has no command", s.Name)
	}
	return nil
}
