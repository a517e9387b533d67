// Package memory enforces the ACE-Step memory policy: a hard floor of
// free host RAM, tier-based generation constraints, and admission checks
// before any generation is allowed to start.
package memory

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SystemInfo is a host RAM snapshot in GB.
type SystemInfo struct {
	TotalGB     float64
	AvailableGB float64
	UsedGB      float64
	FreeGB      float64
	PercentUsed float64
}

// GPUInfo is a VRAM snapshot of the first visible GPU in GB.
type GPUInfo struct {
	TotalGB float64
	UsedGB  float64
}

// Prober supplies memory readings. The process probe and tests inject
// their own implementations.
type Prober interface {
	System() SystemInfo
	ProcessRSSGB() float64
	GPU() GPUInfo
}

const bytesPerGB = 1 << 30

// linuxProber reads /proc and shells out to nvidia-smi for VRAM.
type linuxProber struct {
	mu          sync.Mutex
	gpuDisabled bool
}

// NewProber returns the default /proc-backed prober.
func NewProber() Prober { return &linuxProber{} }

func (p *linuxProber) System() SystemInfo {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return fallbackSystemInfo()
	}
	defer f.Close()
	kv := map[string]float64{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSuffix(parts[0], ":")
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		kv[key] = v / (1024 * 1024) // kB to GB
	}
	total := kv["MemTotal"]
	if total == 0 {
		return fallbackSystemInfo()
	}
	available, ok := kv["MemAvailable"]
	if !ok {
		available = kv["MemFree"]
	}
	used := total - available
	return SystemInfo{
		TotalGB:     total,
		AvailableGB: available,
		UsedGB:      used,
		FreeGB:      kv["MemFree"],
		PercentUsed: used / total * 100,
	}
}

func (p *linuxProber) ProcessRSSGB() float64 {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return 0
		}
		kb, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0
		}
		return kb / (1024 * 1024)
	}
	return 0
}

// GPU queries nvidia-smi once per call; after the first failure the query
// is disabled for the life of the prober so hosts without a GPU are not
// forked against repeatedly.
func (p *linuxProber) GPU() GPUInfo {
	p.mu.Lock()
	disabled := p.gpuDisabled
	p.mu.Unlock()
	if disabled {
		return GPUInfo{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.total,memory.used",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		p.mu.Lock()
		p.gpuDisabled = true
		p.mu.Unlock()
		return GPUInfo{}
	}
	line := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)[0]
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return GPUInfo{}
	}
	totalMiB, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	usedMiB, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err1 != nil || err2 != nil {
		return GPUInfo{}
	}
	return GPUInfo{TotalGB: totalMiB / 1024, UsedGB: usedMiB / 1024}
}

// fallbackSystemInfo matches the conservative values assumed when the
// host offers no meminfo at all.
func fallbackSystemInfo() SystemInfo {
	return SystemInfo{TotalGB: 16, AvailableGB: 8, UsedGB: 8, FreeGB: 4, PercentUsed: 50}
}
