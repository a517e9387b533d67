package launcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

// sleepSpec runs a shell that sleeps; no health URL means it is ready
// as soon as it starts.
func sleepSpec(name string) Spec {
	return Spec{
		Name:    name,
		Command: "/bin/sh",
		Args:    []string{"-c", "sleep 30"},
	}
}

func TestSupervisorStartAndStop(t *testing.T) {
	s := NewSupervisor(t.TempDir())
	if err := s.Start(context.Background(), sleepSpec("web")); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("expected ready")
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].Name != "web" || snap[0].State != StateReady {
		t.Fatalf("snapshot: %+v", snap)
	}
	if snap[0].PID == 0 {
		t.Fatalf("expected a pid")
	}
	if err := s.Stop("web"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	snap = s.Snapshot()
	if snap[0].State != StateStopped {
		t.Fatalf("state=%s", snap[0].State)
	}
	if s.Ready() {
		t.Fatalf("stopped supervisor should not report ready")
	}
}

func TestSupervisorDuplicateStart(t *testing.T) {
	s := NewSupervisor(t.TempDir())
	if err := s.Start(context.Background(), sleepSpec("web")); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.StopAll()
	err := s.Start(context.Background(), sleepSpec("web"))
	if err == nil || !IsAlreadyRunning(err) {
		t.Fatalf("expected already-running, got %v", err)
	}
}

func TestSupervisorEarlyExit(t *testing.T) {
	s := NewSupervisor(t.TempDir())
	spec := Spec{
		Name:         "api",
		Command:      "/bin/sh",
		Args:         []string{"-c", "echo boom >&2; exit 3"},
		HealthURL:    "http://127.0.0.1:1/health", // never answers
		ReadyTimeout: 5 * time.Second,
	}
	err := s.Start(context.Background(), spec)
	if err == nil {
		t.Fatalf("expected early-exit error")
	}
	if !strings.Contains(err.Error(), "exited early") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err=%v", err)
	}
}

func TestSupervisorReadyTimeout(t *testing.T) {
	s := NewSupervisor(t.TempDir())
	spec := sleepSpec("api")
	spec.HealthURL = "http://127.0.0.1:1/health"
	spec.ReadyTimeout = 500 * time.Millisecond
	err := s.Start(context.Background(), spec)
	if err == nil || !strings.Contains(err.Error(), "not ready in time") {
		t.Fatalf("err=%v", err)
	}
	// the timed-out process was stopped
	if snap := s.Snapshot(); snap[0].State != StateStopped {
		t.Fatalf("state=%s", snap[0].State)
	}
}

func TestSupervisorWaitsForHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSupervisor(t.TempDir())
	spec := sleepSpec("web")
	spec.HealthURL = srv.URL
	spec.ReadyTimeout = 5 * time.Second
	if err := s.Start(context.Background(), spec); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.StopAll()
	if snap := s.Snapshot(); snap[0].State != StateReady {
		t.Fatalf("state=%s", snap[0].State)
	}
}

func TestSupervisorCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	s := NewSupervisor(dir)
	spec := Spec{
		Name:        "web",
		Command:     "/bin/sh",
		Args:        []string{"-c", "echo captured"},
		LogFileName: "web_ui.log",
	}
	if err := s.Start(context.Background(), spec); err != nil {
		t.Fatalf("start: %v", err)
	}
	// wait for the process to finish and flush
	deadline := time.Now().Add(5 * time.Second)
	for {
		b, _ := os.ReadFile(dir + "/web_ui.log")
		if strings.Contains(string(b), "captured") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("log never contained output: %q", b)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSupervisorEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	s := NewSupervisor(dir)
	spec := Spec{
		Name:        "web",
		Command:     "/bin/sh",
		Args:        []string{"-c", `echo "limit=$ACESTEP_MEMORY_LIMIT_GB"`},
		Env:         map[string]string{"ACESTEP_MEMORY_LIMIT_GB": "4"},
		LogFileName: "env.log",
	}
	if err := s.Start(context.Background(), spec); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		b, _ := os.ReadFile(dir + "/env.log")
		if strings.Contains(string(b), "limit=4") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("env not passed: %q", b)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStopUnknownProcess(t *testing.T) {
	s := NewSupervisor(t.TempDir())
	err := s.Stop("nope")
	if err == nil || !IsProcessNotFound(err) {
		t.Fatalf("expected process-not-found, got %v", err)
	}
}

func TestSpecValidate(t *testing.T) {
	if err := (Spec{}).validate(); err == nil {
		t.Fatalf("empty spec should fail")
	}
	if err := (Spec{Name: "x"}).validate(); err == nil {
		t.Fatalf("spec without command should fail")
	}
	if err := (Spec{Name: "x", Command: "/bin/true"}).validate(); err != nil {
		t.Fatalf("valid spec refused: %v", err)
	}
}

func TestTailBuffer(t *testing.T) {
	tb := newTailBuffer(8)
	tb.Write([]byte("0123456789abcdef"))
	if got := tb.String(); got != "89abcdef" {
		t.Fatalf("tail=%q", got)
	}
	tb.Write([]byte("XY"))
	if got := tb.String(); got != "abcdefXY" {
		t.Fatalf("tail=%q", got)
	}
}
