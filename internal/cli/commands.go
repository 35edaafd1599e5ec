package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type ClientFactory func(cmd *cobra.Command) *Client

func HealthCmd(cf ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check if the API and its backends are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cf(cmd)
			health, err := client.Health()
			if err != nil {
				fmt.Printf("%s Connection failed: %v\n", red("✗"), err)
				return err
			}

			mark := green("✓")
			if health.Status != "healthy" {
				mark = yellow("!")
			}
			fmt.Printf("%s API %s\n", mark, health.Status)
			for name, state := range health.Components {
				fmt.Printf("  %-10s %s\n", name, FormatComponentState(state))
			}
			return nil
		},
	}
}

func AskCmd(cf ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]...",
		Short: "Answer questions from the indexed documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cf(cmd)
			document, _ := cmd.Flags().GetString("document")
			asJSON, _ := cmd.Flags().GetBool("json")

			resp, err := client.Run(document, args)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			for i, answer := range resp.Answers {
				fmt.Printf("%s %s\n", bold(fmt.Sprintf("Q%d:", i+1)), args[i])
				fmt.Printf("%s\n\n", answer)
			}
			return nil
		},
	}

	cmd.Flags().StringP("document", "d", "", "Document URL (recorded with the request)")
	return cmd
}

func UploadCmd(cf ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [document-url]",
		Short: "Queue a document for ingestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cf(cmd)
			asJSON, _ := cmd.Flags().GetBool("json")
			wait, _ := cmd.Flags().GetBool("wait")

			resp, err := client.Upload(args[0])
			if err != nil {
				return err
			}

			if asJSON && !wait {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Printf("%s %s (task %s)\n", green("✓"), resp.Message, cyan(resp.TaskID))

			if wait {
				return waitForTask(client, resp.TaskID)
			}
			return nil
		},
	}

	cmd.Flags().BoolP("wait", "w", false, "Wait for processing to finish")
	return cmd
}

func StatusCmd(cf ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [task-id]",
		Short: "Show the state of a background task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cf(cmd)
			asJSON, _ := cmd.Flags().GetBool("json")
			wait, _ := cmd.Flags().GetBool("wait")

			if wait {
				return waitForTask(client, args[0])
			}

			resp, err := client.TaskStatus(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			PrintTaskStatus(resp)
			return nil
		},
	}

	cmd.Flags().BoolP("wait", "w", false, "Poll until the task finishes")
	return cmd
}

// waitForTask polls the task status endpoint until the task reaches a
// terminal state.
func waitForTask(client *Client, taskID string) error {
	for {
		resp, err := client.TaskStatus(taskID)
		if err != nil {
			return err
		}

		switch resp.Status {
		case "SUCCESS":
			fmt.Printf("%s Task %s finished\n", green("✓"), taskID)
			if len(resp.Result) > 0 {
				printPrettyJSON(string(resp.Result))
			}
			return nil
		case "FAILURE":
			fmt.Printf("%s Task %s failed: %s\n", red("✗"), taskID, resp.Error)
			return fmt.Errorf("task failed")
		default:
			fmt.Printf("  %s...\n", resp.Status)
			time.Sleep(2 * time.Second)
		}
	}
}

func printPrettyJSON(jsonStr string) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		fmt.Println(jsonStr)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
