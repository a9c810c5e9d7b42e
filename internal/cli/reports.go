package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"time-tracker/internal/stats"
	"time-tracker/internal/usecase"
)

func newEntriesCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List recent time entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			entries, err := c.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", usecase.DefaultRecentLimit, "Number of entries")
	return cmd
}

func newStatsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show time statistics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Statistics for the current week (Monday to Sunday)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			s, err := c.Weekly(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	})

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Statistics for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			s, err := c.Daily(cmd.Context(), date)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
	daily.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default: today)")
	cmd.AddCommand(daily)
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var from, to, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download entries and summary as an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			week := stats.Week(time.Now())
			if from == "" {
				from = week.From.Format(time.DateOnly)
			}
			if to == "" {
				to = week.To.AddDate(0, 0, -1).Format(time.DateOnly)
			}
			if output == "" {
				output = fmt.Sprintf("time-entries_%s_%s.xlsx", from, to)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := c.Export(cmd.Context(), from, to, f); err != nil {
				f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD or RFC3339 (default: this Monday)")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD or RFC3339 (default: this Sunday)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	return cmd
}
