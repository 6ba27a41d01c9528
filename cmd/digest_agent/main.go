// Package main provides the entry point for the news digest CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "digest_agent",
	Short: "RIK evening news digest pipeline",
	Long: `digest_agent turns the RIK 8pm news broadcast into daily digests: it downloads and transcribes the broadcast, summarizes it per language, links the summary to scraped newspaper articles, draws a cover and publishes to Substack.

Every stage is resumable; re-running a finished day does nothing.`,
	SilenceUsage: true,
}

// signalContext is cancelled on Ctrl-C or when a supervisor stops the process.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
