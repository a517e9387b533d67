package launcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"acestepd/internal/common/fsutil"
	"acestepd/pkg/types"
)

const (
	defaultReadyTimeout = 60 * time.Second
	stopGracePeriod     = 2 * time.Second
)

// Process lifecycle states.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateExited   = "exited"
	StateStopped  = "stopped"
)

type proc struct {
	spec    Spec
	cmd     *exec.Cmd
	state   string
	started time.Time
	logPath string
	logFile *RotatingFile
	tail    *tailBuffer
	errMsg  string
	waitCh  chan error // receives the cmd.Wait result exactly once
}

// Supervisor owns the spawned server processes.
type Supervisor struct {
	logsDir    string
	httpClient *http.Client

	mu        sync.Mutex
	procs     map[string]*proc
	startTime time.Time
}

// NewSupervisor builds a Supervisor writing process logs under logsDir.
func NewSupervisor(logsDir string) *Supervisor {
	// Timeout stays 0: readiness polling carries its own context deadlines.
	return &Supervisor{
		logsDir:    logsDir,
		httpClient: &http.Client{Timeout: 0},
		procs:      make(map[string]*proc),
		startTime:  time.Now(),
	}
}

// StartTime is when the supervisor was created.
func (s *Supervisor) StartTime() time.Time { return s.startTime }

// LogsDir returns the directory receiving process logs.
func (s *Supervisor) LogsDir() string { return s.logsDir }

// Start spawns the process described by spec, waits for readiness when a
// health URL is configured, and registers it for supervision.
func (s *Supervisor) Start(ctx context.Context, spec Spec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	if spec.Port > 0 && PortBusy(spec.Host, spec.Port) {
		return fmt.Errorf("port %d already in use, not starting %s", spec.Port, spec.Name)
	}
	s.mu.Lock()
	if existing := s.procs[spec.Name]; existing != nil {
		if existing.state == StateStarting || existing.state == StateReady {
			s.mu.Unlock()
			return ErrAlreadyRunning(spec.Name)
		}
	}
	s.mu.Unlock()

	if err := fsutil.EnsureDir(s.logsDir); err != nil {
		return fmt.Errorf("logs dir: %w", err)
	}
	logName := spec.LogFileName
	if logName == "" {
		logName = spec.Name + ".log"
	}
	logPath := filepath.Join(s.logsDir, logName)
	logFile, err := OpenRotating(logPath, 0)
	if err != nil {
		return fmt.Errorf("open log %s: %w", logPath, err)
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	tail := newTailBuffer(4096)
	cmd.Stdout = logFile
	cmd.Stderr = io.MultiWriter(logFile, tail)

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("start %s: %w", spec.Name, err)
	}
	log.Info().
		Str("process", spec.Name).
		Int("pid", cmd.Process.Pid).
		Str("log", logPath).
		Msg("process started")

	p := &proc{
		spec:    spec,
		cmd:     cmd,
		state:   StateStarting,
		started: time.Now(),
		logPath: logPath,
		logFile: logFile,
		tail:    tail,
		waitCh:  make(chan error, 1),
	}
	s.mu.Lock()
	s.procs[spec.Name] = p
	s.mu.Unlock()

	go func() {
		werr := cmd.Wait()
		p.waitCh <- werr
		logFile.Close()
		s.mu.Lock()
		if p.state != StateStopped {
			p.state = StateExited
			if werr != nil {
				p.errMsg = werr.Error()
			}
		}
		s.mu.Unlock()
		if werr != nil {
			log.Warn().Str("process", spec.Name).Err(werr).Msg("process exited")
		} else {
			log.Info().Str("process", spec.Name).Msg("process exited cleanly")
		}
	}()

	if spec.HealthURL == "" {
		s.setState(spec.Name, StateReady)
		return nil
	}
	return s.waitReady(ctx, p)
}

// waitReady polls the health URL with early-exit detection, matching the
// readiness loop used for every spawned server.
func (s *Supervisor) waitReady(ctx context.Context, p *proc) error {
	timeout := p.spec.ReadyTimeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	healthCh := make(chan error, 1)
	go func() {
		healthCh <- waitHTTP(deadline, s.httpClient, p.spec.HealthURL)
	}()

	select {
	case werr := <-p.waitCh:
		// keep the result observable for Stop and the exit watcher
		p.waitCh <- werr
		tail := p.tail.String()
		if werr != nil {
			return fmt.Errorf("%s exited early: %v; stderr tail: %s", p.spec.Name, werr, tail)
		}
		return fmt.Errorf("%s exited before ready", p.spec.Name)
	case err := <-healthCh:
		if err != nil {
			_ = s.Stop(p.spec.Name)
			return fmt.Errorf("%s not ready in time: %s", p.spec.Name, p.spec.HealthURL)
		}
	}
	s.setState(p.spec.Name, StateReady)
	log.Info().Str("process", p.spec.Name).Str("url", p.spec.HealthURL).Msg("process ready")
	return nil
}

// Stop terminates a supervised process: SIGTERM, a grace period, then
// SIGKILL. Stopping an already finished process is a no-op.
func (s *Supervisor) Stop(name string) error {
	s.mu.Lock()
	p := s.procs[name]
	s.mu.Unlock()
	if p == nil {
		return ErrProcessNotFound(name)
	}
	s.mu.Lock()
	finished := p.state == StateExited || p.state == StateStopped
	s.mu.Unlock()
	if finished || p.cmd.Process == nil {
		return nil
	}

	_ = p.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case werr := <-p.waitCh:
		p.waitCh <- werr
	case <-time.After(stopGracePeriod):
		_ = p.cmd.Process.Kill()
		werr := <-p.waitCh
		p.waitCh <- werr
	}
	s.setState(name, StateStopped)
	log.Info().Str("process", name).Msg("process stopped")
	return nil
}

// StopAll terminates every supervised process, best effort.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	names := make([]string, 0, len(s.procs))
	for name := range s.procs {
		names = append(names, name)
	}
	s.mu.Unlock()
	for _, name := range names {
		_ = s.Stop(name)
	}
}

// Ready reports whether every supervised process is in the ready state
// and at least one exists.
func (s *Supervisor) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.procs) == 0 {
		return false
	}
	for _, p := range s.procs {
		if p.state != StateReady {
			return false
		}
	}
	return true
}

// Snapshot lists the supervised processes sorted by name.
func (s *Supervisor) Snapshot() []types.ProcessStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ProcessStatus, 0, len(s.procs))
	for _, p := range s.procs {
		st := types.ProcessStatus{
			Name:      p.spec.Name,
			State:     p.state,
			HealthURL: p.spec.HealthURL,
			LogFile:   p.logPath,
			Error:     p.errMsg,
		}
		if p.state == StateStarting || p.state == StateReady {
			st.PID = p.cmd.Process.Pid
			st.StartedUnix = p.started.Unix()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Supervisor) setState(name, state string) {
	s.mu.Lock()
	if p := s.procs[name]; p != nil {
		p.state = state
	}
	s.mu.Unlock()
}

// tailBuffer keeps the last max bytes written, for error context.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer { return &tailBuffer{max: max} }

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
