package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFileAppend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "proc.log")
	f, err := OpenRotating(p, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	// Reopening appends instead of truncating.
	f, err = OpenRotating(p, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := f.Write([]byte("world\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello\nworld\n" {
		t.Fatalf("content=%q", b)
	}
}

func TestRotatingFileRotates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "proc.log")
	f, err := OpenRotating(p, 32)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	line := bytes.Repeat([]byte("x"), 20)
	for i := 0; i < 4; i++ {
		if _, err := f.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if _, err := os.Stat(p + ".1"); err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() > 32 {
		t.Fatalf("live log too big after rotation: %d", fi.Size())
	}
}

func TestRotatingFileShiftsChain(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "proc.log")
	if err := os.WriteFile(p+".1", []byte("old1"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f, err := OpenRotating(p, 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	f.Write([]byte("aaaaaa"))
	f.Write([]byte("bbbbbb")) // triggers rotation
	b, err := os.ReadFile(p + ".2")
	if err != nil {
		t.Fatalf("chain not shifted: %v", err)
	}
	if string(b) != "old1" {
		t.Fatalf("shifted content=%q", b)
	}
	if b, _ := os.ReadFile(p + ".1"); !strings.Contains(string(b), "aaaaaa") {
		t.Fatalf("rotated content=%q", b)
	}
}

func TestRotatingFileCreatesParentDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "proc.log")
	f, err := OpenRotating(p, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.Close()
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("log not created: %v", err)
	}
}
