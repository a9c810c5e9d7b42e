package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"time-tracker/internal/timer"
	"time-tracker/internal/tui"
)

func newTimerCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, pause, resume and stop the timer",
	}

	var category string
	start := &cobra.Command{
		Use:   "start <title>",
		Short: "Start a new timer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			categoryID, err := o.categoryID(cmd.Context(), category)
			if err != nil {
				return err
			}
			s, err := ctl.Start(cmd.Context(), strings.Join(args, " "), categoryID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %q at %s\n", s.Title, s.StartedAt.Local().Format("15:04:05"))
			return nil
		},
	}
	start.Flags().StringVarP(&category, "category", "c", "", "Category name")

	pause := &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctl.Pause(cmd.Context()); err != nil {
				return err
			}
			return printStatus(cmd, ctl)
		},
	}

	resume := &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctl.Resume(cmd.Context()); err != nil {
				return err
			}
			return printStatus(cmd, ctl)
		},
	}

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and save the entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			e, err := ctl.Stop(cmd.Context())
			if err != nil {
				return err
			}
			var d int64
			if e.DurationSec != nil {
				d = *e.DurationSec
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stopped %q after %s\n", e.Title, timer.FormatClock(d))
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd, ctl)
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Show a live stopwatch for the active timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := o.controller(cmd.Context())
			if err != nil {
				return err
			}
			if ctl.State() == timer.Idle {
				return fmt.Errorf("%w, start one with `time-tracker timer start`", timer.ErrNoActiveEntry)
			}
			return tui.Run(cmd.Context(), ctl)
		},
	}

	cmd.AddCommand(start, pause, resume, stop, status, watch)
	return cmd
}

// controller returns a Timer Controller reconciled with the server.
func (o *options) controller(ctx context.Context) (*timer.Controller, error) {
	c, err := o.authedClient()
	if err != nil {
		return nil, err
	}
	ctl := timer.NewController(c, time.Now, o.log)
	if _, err := ctl.Reconcile(ctx); err != nil {
		return nil, fmt.Errorf("load active timer: %w", err)
	}
	return ctl, nil
}

// categoryID resolves a category name, case-insensitively.
func (o *options) categoryID(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	c, err := o.authedClient()
	if err != nil {
		return nil, err
	}
	cats, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, name) {
			id := cat.ID
			return &id, nil
		}
		names = append(names, cat.Name)
	}
	return nil, fmt.Errorf("unknown category %q (have: %s)", name, strings.Join(names, ", "))
}

func printStatus(cmd *cobra.Command, ctl *timer.Controller) error {
	snap := ctl.Snapshot(time.Now())
	out := cmd.OutOrStdout()
	if snap.Session == nil {
		fmt.Fprintln(out, "no active timer")
		return nil
	}
	fmt.Fprintf(out, "%s %q %s (started %s)\n",
		snap.State, snap.Session.Title, timer.FormatClock(snap.Elapsed),
		snap.Session.StartedAt.Local().Format("15:04:05"))
	return nil
}
