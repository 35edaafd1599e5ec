// launch is the deployment entrypoint. It reads PROCESS_TYPE and replaces
// itself with the web server or the task-queue worker.
package main

import (
	"fmt"
	"os"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/launcher"
)

func main() {
	pt, err := config.ProcessTypeFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: PROCESS_TYPE is not set")
		os.Exit(1)
	}

	target := launcher.Plan(pt, launcher.OptionsFromEnv())
	if err := launcher.Exec(target); err != nil {
		// Only reached when the exec itself failed.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
