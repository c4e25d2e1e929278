package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// Finalizer is anything holding terminal state that must be restored on crash
// tcell.Screen satisfies it
type Finalizer interface {
	Fini()
}

type finalizerBox struct {
	f Finalizer
}

var crashScreen atomic.Pointer[finalizerBox]

// exit is replaced in tests
var exit = os.Exit

// SetCrashScreen registers the screen restored by HandleCrash, nil clears it
func SetCrashScreen(f Finalizer) {
	if f == nil {
		crashScreen.Store(nil)
		return
	}
	crashScreen.Store(&finalizerBox{f: f})
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	// Restore terminal to sane state before writing to it
	if box := crashScreen.Swap(nil); box != nil {
		box.f.Fini()
	}

	Logger().Error("crash", "panic", fmt.Sprint(r))

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\n\x1b[31mCRASH DETECTED: %v\x1b[0m\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Stderr.Sync()

	exit(1)
}

// Go runs a function in a new goroutine with panic recovery
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
