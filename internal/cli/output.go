package cli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func FormatComponentState(state string) string {
	switch state {
	case "healthy":
		return green(state)
	case "unhealthy":
		return red(state)
	default:
		return yellow(state)
	}
}

func FormatTaskState(state string) string {
	switch state {
	case "SUCCESS":
		return green(state)
	case "FAILURE":
		return red(state)
	case "STARTED":
		return cyan(state)
	default:
		return yellow(state)
	}
}

func PrintTaskStatus(s *TaskStatusResponse) {
	fmt.Printf("%s %s\n", bold("Task:"), s.TaskID)
	fmt.Printf("%s %s\n", bold("State:"), FormatTaskState(s.Status))
	if s.Error != "" {
		fmt.Printf("%s %s\n", bold("Error:"), red(s.Error))
	}
	if len(s.Result) > 0 {
		fmt.Printf("%s\n", bold("Result:"))
		printPrettyJSON(string(s.Result))
	}
}
