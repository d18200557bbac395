// Package host drives an App through its lifecycle callbacks.
package host

import (
	"context"

	"github.com/user/ornament/pkg/ports"
)

// Result is what a lifecycle callback asks the loop to do next.
type Result int

const (
	// Continue keeps the loop running.
	Continue Result = iota
	// Success ends the loop normally.
	Success
	// Failure ends the loop with an error.
	Failure
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// ExitCode maps a final result to a process exit status.
func (r Result) ExitCode() int {
	if r == Failure {
		return 1
	}
	return 0
}

// App is an application driven by Run. All callbacks are invoked from the
// goroutine that called Run.
type App interface {
	// Init prepares the app. An error ends the loop with Failure.
	Init(ctx context.Context) error

	// Iterate runs once per display refresh.
	Iterate() Result

	// Event handles one input or window event.
	Event(ev ports.Event) Result

	// Quit releases everything. It is called exactly once, also after a failed Init.
	Quit(result Result)
}

// Run initializes app and iterates it until a callback or ctx ends the loop.
// Pacing comes from the app's presenter.
func Run(ctx context.Context, app App, events ports.EventSource, log ports.Logger) Result {
	log = log.WithComponent("host")

	result := loop(ctx, app, events, log)
	app.Quit(result)
	log.Debug("Quit with %s", result)
	return result
}

func loop(ctx context.Context, app App, events ports.EventSource, log ports.Logger) Result {
	if err := app.Init(ctx); err != nil {
		log.Error("Initialization failed: %v", err)
		return Failure
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutdown requested")
			return Success
		default:
		}

		for {
			ev, ok := events.PollEvent()
			if !ok {
				break
			}
			if r := app.Event(ev); r != Continue {
				return r
			}
		}

		if r := app.Iterate(); r != Continue {
			return r
		}
	}
}
