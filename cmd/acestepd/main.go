package main

import (
	"fmt"
	"os"

	"acestepd/internal/ctl"
)

func main() {
	if err := ctl.BuildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
