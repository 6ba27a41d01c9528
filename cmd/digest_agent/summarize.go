package main

import (
	"time"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize YYYY-MM-DD",
	Short: "Produce the linked digests for a day without cover or publishing",
	Long:  "Runs the transcript, summary and linking stages for each selected language and stops before the cover image and Substack.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	day, err := s.resolveDay(args, time.Now())
	if err != nil {
		return err
	}
	return runDay(cmd, s, day, runnerOptions{SkipCover: true, SkipPublish: true})
}
