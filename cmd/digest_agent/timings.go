package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-digest/internal/days"
	"github.com/jonathan/news-digest/internal/ledger"
	"github.com/jonathan/news-digest/internal/observability"
)

var timingsCmd = &cobra.Command{
	Use:   "timings [YYYY-MM-DD]",
	Short: "Show the recorded step timings for a day",
	Long:  "Reads the step ledger database (--ledger-dsn or ledger_dsn in the config) and prints every step recorded for the day.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTimings,
}

func init() {
	rootCmd.AddCommand(timingsCmd)
}

func runTimings(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if s.cfg.LedgerDSN == "" {
		return fmt.Errorf("--ledger-dsn or ledger_dsn in the config is required")
	}
	day, err := s.resolveDay(args, time.Now())
	if err != nil {
		return err
	}

	rec, err := ledger.OpenSQL(cmd.Context(), s.cfg.LedgerDSN)
	if err != nil {
		return err
	}
	defer rec.Close()

	entries, err := rec.List(cmd.Context(), day.Format(days.Format))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No steps recorded for %s\n", day.Format(days.Format))
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintTimings(entries)
	return nil
}
