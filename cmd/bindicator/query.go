package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bindicator/internal/bins"
	"bindicator/internal/ical"
	"bindicator/internal/service"
)

const dateLayout = "2006-01-02"

func newParseCmd(_ *rootFlags) *cobra.Command {
	var strict, asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an ICS file (or stdin) and print its events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			records, err := ical.ParseReader(in, ical.Options{Strict: strict})
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject content after END:VCALENDAR")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of one event per line")
	return cmd
}

type recordJSON struct {
	Start   string `json:"start,omitempty"`
	Summary string `json:"summary,omitempty"`
}

func printRecords(w io.Writer, records []ical.Record, asJSON bool) error {
	if asJSON {
		out := make([]recordJSON, 0, len(records))
		for _, r := range records {
			rj := recordJSON{Summary: r.Summary}
			if !r.Start.IsZero() {
				rj.Start = r.Start.String()
			}
			out = append(out, rj)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, r := range records {
		start := "-"
		if !r.Start.IsZero() {
			start = r.Start.String()
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", start, r.Summary); err != nil {
			return err
		}
	}
	return nil
}

func newBinsCmd(flags *rootFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Fetch the feeds and print the bins due on a day (default tomorrow)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			svc := service.New(cfg, nil, nil)
			if err := svc.Refresh(cmd.Context()); err != nil && !svc.Ready() {
				return err
			}

			var (
				day time.Time
				due bins.Set
			)
			if date == "" {
				day, due = svc.Tomorrow()
			} else {
				day, err = time.ParseInLocation(dateLayout, date, svc.Location())
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				due = svc.BinsFor(day)
			}
			if len(due) == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\tnothing\n", day.Format(dateLayout))
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", day.Format(dateLayout), due)
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to look up, YYYY-MM-DD")
	return cmd
}

func newScheduleCmd(flags *rootFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Fetch the feeds and list upcoming collection days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.HorizonDays
			}
			svc := service.New(cfg, nil, nil)
			if err := svc.Refresh(cmd.Context()); err != nil && !svc.Ready() {
				return err
			}
			sched, err := svc.Schedule(time.Now().In(svc.Location()), days)
			if err != nil {
				return err
			}
			for _, d := range bins.Upcoming(sched) {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					d.Date.Format(dateLayout), d.Date.Weekday().String()[:3], d.Bins); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days to cover (default horizon_days from config)")
	return cmd
}
