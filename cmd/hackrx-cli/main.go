package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hackrx",
		Short: "HackRx CLI - interact with the document intelligence API",
		Long:  "Command-line tool to upload documents and ask questions without a browser.",
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("url", "u", "", "API URL (default: http://localhost:8000 or HACKRX_API_URL)")
	rootCmd.PersistentFlags().StringP("key", "k", "", "API key (default: HACKRX_API_KEY)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	// Create client factory
	clientFactory := func(cmd *cobra.Command) *cli.Client {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			url = os.Getenv("HACKRX_API_URL")
		}
		if url == "" {
			url = "http://localhost:8000"
		}
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			key = os.Getenv("HACKRX_API_KEY")
		}
		return cli.NewClient(url, key)
	}

	// Add commands
	rootCmd.AddCommand(cli.HealthCmd(clientFactory))
	rootCmd.AddCommand(cli.AskCmd(clientFactory))
	rootCmd.AddCommand(cli.UploadCmd(clientFactory))
	rootCmd.AddCommand(cli.StatusCmd(clientFactory))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
