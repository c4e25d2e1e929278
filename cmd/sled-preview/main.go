// Command sled-preview animates a spatial LED layout in the terminal and
// optionally streams RGB packets to a strip controller
//
// Configuration comes from SLED_* environment variables, overridden by flags;
// see -help. Logs go to logs/sled-preview.log with -debug.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/spatial-led/core"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Panic recovery: restore the terminal even if the pipeline crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "sled-preview: %v\n", err)
		return 2
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sled-preview: %v\n", err)
		return 1
	}
	err = a.run(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sled-preview: %v\n", err)
		return 1
	}
	return 0
}
