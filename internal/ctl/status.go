package ctl

import (
	"fmt"
	"io"
)

// runStatus prints the memory self-test, mirroring the old menu's
// choice 4. The exit code reflects health so scripts can branch on it.
func runStatus(w io.Writer, app *App) error {
	st := app.Memory.Status()

	fmt.Fprintln(w, "=== ACE-Step memory status ===")
	fmt.Fprintf(w, "RAM total:       %8.2f GB\n", st.Usage.RAMTotalGB)
	fmt.Fprintf(w, "RAM available:   %8.2f GB\n", st.Usage.RAMAvailableGB)
	fmt.Fprintf(w, "RAM used:        %8.2f GB\n", st.Usage.RAMUsedGB)
	fmt.Fprintf(w, "Process RSS:     %8.2f GB\n", st.Usage.ProcessGB)
	if st.Usage.GPUTotalGB > 0 {
		fmt.Fprintf(w, "GPU total:       %8.2f GB\n", st.Usage.GPUTotalGB)
		fmt.Fprintf(w, "GPU used:        %8.2f GB\n", st.Usage.GPUUsedGB)
	} else {
		fmt.Fprintln(w, "GPU:             not visible")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Memory limit:    %8.2f GB\n", st.Config.MaxMemoryGB)
	fmt.Fprintf(w, "Min free floor:  %8.2f GB\n", st.Config.MinFreeRAMGB)
	fmt.Fprintf(w, "Memory tier:     %s\n", st.Constraints.MemoryTier)
	fmt.Fprintf(w, "Max duration:    %d s\n", st.Constraints.MaxDurationSeconds)
	fmt.Fprintf(w, "LM enabled:      %t\n", st.Constraints.LMEnabled)
	fmt.Fprintf(w, "Offload to CPU:  %t (DiT: %t)\n", st.Constraints.OffloadToCPU, st.Constraints.OffloadDiTToCPU)
	fmt.Fprintln(w)
	if st.Healthy {
		fmt.Fprintln(w, "Status: healthy")
		return nil
	}
	fmt.Fprintln(w, "Status: LOW MEMORY")
	return fmt.Errorf("free RAM below the %.1fGB floor", st.Config.MinFreeRAMGB)
}
