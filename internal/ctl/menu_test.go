package ctl

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestMenuStatusChoice(t *testing.T) {
	app := testApp(t, 12.0)
	var out bytes.Buffer
	err := runMenu(context.Background(), strings.NewReader("4\n"), &out, app)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "Choice [1-4]") {
		t.Fatalf("prompt missing: %q", s)
	}
	if !strings.Contains(s, "memory status") {
		t.Fatalf("self-test missing: %q", s)
	}
}

func TestMenuTrimsInput(t *testing.T) {
	app := testApp(t, 12.0)
	var out bytes.Buffer
	if err := runMenu(context.Background(), strings.NewReader("  4  \n"), &out, app); err != nil {
		t.Fatalf("menu: %v", err)
	}
}

func TestMenuInvalidChoice(t *testing.T) {
	app := testApp(t, 12.0)
	var out bytes.Buffer
	err := runMenu(context.Background(), strings.NewReader("7\n"), &out, app)
	if err == nil || !strings.Contains(err.Error(), "invalid choice") {
		t.Fatalf("err=%v", err)
	}
}

func TestMenuNoInput(t *testing.T) {
	app := testApp(t, 12.0)
	var out bytes.Buffer
	if err := runMenu(context.Background(), strings.NewReader(""), &out, app); err == nil {
		t.Fatalf("expected error on empty input")
	}
}

func TestRunStatusHealthy(t *testing.T) {
	app := testApp(t, 12.0)
	var out bytes.Buffer
	if err := runStatus(&out, app); err != nil {
		t.Fatalf("status: %v", err)
	}
	s := out.String()
	for _, want := range []string{"RAM available", "Memory tier", "Status: healthy"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q: %q", want, s)
		}
	}
}

func TestRunStatusLowMemory(t *testing.T) {
	app := testApp(t, 3.0)
	var out bytes.Buffer
	err := runStatus(&out, app)
	if err == nil {
		t.Fatalf("expected non-nil error so the exit code reflects health")
	}
	if !strings.Contains(out.String(), "LOW MEMORY") {
		t.Fatalf("output: %q", out.String())
	}
}
