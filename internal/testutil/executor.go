package testutil

import (
	"context"
	"sync"
)

// Invocation records one call made to a FakeExecutor.
type Invocation struct {
	Binary string
	Args   []string
}

// FakeExecutor replays scripted output lines instead of running a process.
// It satisfies the downloader Executor interface.
type FakeExecutor struct {
	// Lines are delivered to the line callback in order.
	Lines []string
	// Err is returned after all lines were delivered.
	Err error
	// OnRun runs after the lines were delivered, before Err is returned. Tests
	// use it to create the files a real download would leave behind.
	OnRun func(args []string) error

	mu    sync.Mutex
	calls []Invocation
}

// Run implements the downloader Executor interface.
func (f *FakeExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, Invocation{Binary: binary, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	for _, line := range f.Lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onLine != nil {
			onLine(line)
		}
	}
	if f.OnRun != nil {
		if err := f.OnRun(args); err != nil {
			return err
		}
	}
	return f.Err
}

// Calls returns a copy of the recorded invocations.
func (f *FakeExecutor) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

// OutputArg returns the value following "-o" in args, or "".
func OutputArg(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-o" {
			return args[i+1]
		}
	}
	return ""
}
