// Package launcher selects and starts the process a deployment should run
// based on the PROCESS_TYPE environment variable.
//
// On success the launcher replaces its own process image with the target
// command (the launcher's PID becomes the target's PID; no supervisor
// remains). Platforms without an exec primitive fall back to spawn-and-wait
// with exit-code forwarding; see exec_other.go.
package launcher

import (
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config/envutil"
)

// Target is the command a process role resolves to.
type Target struct {
	// Argv is the full command line, Argv[0] being the program to run.
	Argv []string
}

// Program returns the program name.
func (t Target) Program() string {
	if len(t.Argv) == 0 {
		return ""
	}
	return t.Argv[0]
}

// Args returns the arguments after the program name.
func (t Target) Args() []string {
	if len(t.Argv) <= 1 {
		return nil
	}
	return t.Argv[1:]
}

// Options configures which collaborator commands the roles resolve to. Only
// the program names are configurable; the argument lists are fixed.
type Options struct {
	// WebServer is the ASGI server command for the web role.
	WebServer string

	// WorkerCommand is the task-queue worker command for the worker role.
	WorkerCommand string
}

// DefaultOptions returns the collaborator commands of the legacy deployment.
func DefaultOptions() Options {
	return Options{
		WebServer:     "uvicorn",
		WorkerCommand: "celery",
	}
}

// OptionsFromEnv builds Options from the environment, falling back to the
// legacy commands.
func OptionsFromEnv() Options {
	return Options{
		WebServer:     envutil.GetStringEnv("LAUNCH_WEB_SERVER", "uvicorn"),
		WorkerCommand: envutil.GetStringEnv("LAUNCH_WORKER_COMMAND", "celery"),
	}
}

// Plan resolves a process role to its target command. The decision depends on
// nothing but the role and the configured program names.
func Plan(pt config.ProcessType, opts Options) Target {
	switch pt {
	case config.ProcessTypeWeb:
		return Target{Argv: []string{
			opts.WebServer,
			"main:app",
			"--host", "0.0.0.0",
			"--port", "8000",
		}}
	case config.ProcessTypeWorker:
		return Target{Argv: []string{
			opts.WorkerCommand,
			"-A", "celery_app.celery",
			"worker",
			"--loglevel=info",
			"--pool=solo",
		}}
	default:
		return Target{}
	}
}
