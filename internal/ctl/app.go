// Package ctl wires the launcher stack together and exposes it as a
// cobra command tree: config resolution, the memory gate, security
// policy, process supervision and the control API server.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"acestepd/internal/config"
	"acestepd/internal/httpapi"
	"acestepd/internal/launcher"
	"acestepd/internal/memory"
	"acestepd/internal/security"
	"acestepd/pkg/types"
)

// App is the assembled supervisor: one per acestepd process.
type App struct {
	Config     config.Config
	Memory     *memory.Manager
	Security   *security.Manager
	Supervisor *launcher.Supervisor
}

// NewApp builds the full stack from the resolved configuration.
func NewApp(cfg config.Config) *App {
	probe := memory.NewProber()
	memCfg := memory.ConfigFrom(cfg, probe.System())
	return &App{
		Config:     cfg,
		Memory:     memory.NewManager(memCfg, probe),
		Security:   security.NewManager(security.ConfigFromEnv()),
		Supervisor: launcher.NewSupervisor(cfg.LogsDir),
	}
}

// Status implements httpapi.Service.
func (a *App) Status() types.StatusResponse {
	return types.StatusResponse{
		Processes:      a.Supervisor.Snapshot(),
		Memory:         a.Memory.Status(),
		Security:       a.Security.Status(),
		UptimeSeconds:  int64(time.Since(a.Supervisor.StartTime()).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}

// MemoryStatus implements httpapi.Service.
func (a *App) MemoryStatus() types.MemoryStatus { return a.Memory.Status() }

// Constraints implements httpapi.Service.
func (a *App) Constraints() types.Constraints { return a.Memory.Constraints() }

// Processes implements httpapi.Service.
func (a *App) Processes() []types.ProcessStatus { return a.Supervisor.Snapshot() }

// StopProcess implements httpapi.Service.
func (a *App) StopProcess(name string) error { return a.Supervisor.Stop(name) }

// Ready implements httpapi.Service.
func (a *App) Ready() bool { return a.Supervisor.Ready() }

// Admit gates one generation: quota first, then the memory floor, then
// parameter clamping. Allowed admissions are recorded on both counters.
func (a *App) Admit(req types.AdmissionRequest, identifier string) (types.AdmissionResponse, error) {
	ok, _, msg := a.Security.CheckGenerationLimit(identifier)
	if !ok {
		return types.AdmissionResponse{Allowed: false, Message: msg}, nil
	}

	estimated := req.EstimatedGB
	if estimated <= 0 {
		estimated = 2.0
	}
	if err := a.Memory.Admit(estimated); err != nil {
		memory.CountAdmission(false)
		return types.AdmissionResponse{}, err
	}

	duration := req.DurationSeconds
	if duration <= 0 {
		duration = float64(a.Memory.Config().MaxDurationSeconds)
	}
	batch := req.BatchSize
	if batch <= 0 {
		batch = 1
	}
	duration, batch, warnings := a.Memory.ValidateParams(duration, batch)

	a.Memory.RecordGeneration()
	a.Security.RecordGeneration(identifier)
	memory.CountAdmission(true)

	_, remaining, _ := a.Security.CheckGenerationLimit(identifier)
	return types.AdmissionResponse{
		Allowed:         true,
		DurationSeconds: duration,
		BatchSize:       batch,
		Warnings:        warnings,
		RemainingQuota:  remaining,
	}, nil
}

// launchSpecs maps a launch mode to the process specs it requires.
func (a *App) launchSpecs(mode string) ([]launcher.Spec, error) {
	switch mode {
	case "web":
		return []launcher.Spec{launcher.WebSpec(a.Config)}, nil
	case "api":
		return []launcher.Spec{launcher.APISpec(a.Config)}, nil
	case "both":
		return []launcher.Spec{launcher.WebSpec(a.Config), launcher.APISpec(a.Config)}, nil
	default:
		return nil, fmt.Errorf("unknown launch mode: %s", mode)
	}
}

// Run executes a launch mode end to end: startup memory check, memory
// monitor, server processes, control API, then blocks until SIGINT or
// SIGTERM and tears everything down. Any startup failure aborts
// immediately with a non-zero exit from the CLI layer.
func (a *App) Run(ctx context.Context, mode string) error {
	if err := a.Memory.CheckStartup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitorLog, err := launcher.OpenRotating(filepath.Join(a.Config.LogsDir, "memory_monitor.log"), 0)
	if err != nil {
		return err
	}
	defer monitorLog.Close()
	monitor := memory.NewMonitor(a.Memory, monitorLog, 0)
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	defer cancelMonitor()
	go monitor.Run(monitorCtx)

	specs, err := a.launchSpecs(mode)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := a.Supervisor.Start(ctx, spec); err != nil {
			a.Supervisor.StopAll()
			return err
		}
	}
	defer a.Supervisor.StopAll()

	mux := httpapi.NewMux(serviceAdapter{a}, a.Security)
	srv := &http.Server{Addr: a.Config.ControlAddr, Handler: mux}
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.Config.ControlAddr).Msg("control API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	cancelMonitor()
	<-monitor.Done()
	return nil
}

// serviceAdapter renames App.MemoryStatus to the interface's Memory.
type serviceAdapter struct{ *App }

func (s serviceAdapter) Memory() types.MemoryStatus { return s.App.MemoryStatus() }
