package config

import (
	"errors"
	"os"
)

// ProcessTypeVar is the environment variable that selects the process role.
const ProcessTypeVar = "PROCESS_TYPE"

// ProcessType selects which role a deployment runs as.
type ProcessType string

const (
	// ProcessTypeWeb runs the HTTP API server.
	ProcessTypeWeb ProcessType = "web"

	// ProcessTypeWorker runs the task-queue worker.
	ProcessTypeWorker ProcessType = "worker"
)

// ErrProcessTypeNotSet is returned when PROCESS_TYPE is missing or does not
// name a known role. The two cases are deliberately not distinguished.
var ErrProcessTypeNotSet = errors.New("PROCESS_TYPE is not set")

// ParseProcessType maps a raw PROCESS_TYPE value to a role.
func ParseProcessType(value string) (ProcessType, error) {
	switch ProcessType(value) {
	case ProcessTypeWeb:
		return ProcessTypeWeb, nil
	case ProcessTypeWorker:
		return ProcessTypeWorker, nil
	default:
		return "", ErrProcessTypeNotSet
	}
}

// ProcessTypeFromEnv reads and parses PROCESS_TYPE from the environment.
func ProcessTypeFromEnv() (ProcessType, error) {
	return ParseProcessType(os.Getenv(ProcessTypeVar))
}
