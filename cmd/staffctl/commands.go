package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/exam-staffing-api/pkg/auth"
	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/export"
	"github.com/arnavshah/exam-staffing-api/pkg/ingest"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

func newAssignCmd(opts *options) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "assign <sessions.csv> <staff.csv>",
		Short: "Assign staff and write the CSV views",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.schedule(args[0], args[1])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			views := []struct {
				name   string
				render func(*models.AssignmentResult, ...export.CSVOption) ([]byte, error)
			}{
				{"assignments.csv", export.AssignmentsCSV},
				{"totals.csv", export.TotalsCSV},
				{"backups.csv", export.BackupsCSV},
				{"staff_schedule.csv", export.StaffScheduleCSV},
			}
			for _, v := range views {
				data, err := v.render(result, export.WithBOM())
				if err != nil {
					return fmt.Errorf("%s: %w", v.name, err)
				}
				if err := os.WriteFile(filepath.Join(outDir, v.name), data, 0o644); err != nil {
					return err
				}
			}

			counts := result.Counts()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sessions: %d assigned, %d partially assigned, %d unassigned\n",
				counts.Assigned, counts.PartiallyAssigned, counts.Unassigned)
			fmt.Fprintf(out, "backups: %d\n", len(result.Backups))
			fmt.Fprintf(out, "fairness: %.1f\n", result.FairnessScore)
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "report <sessions.csv> <staff.csv> <out.pdf>",
		Short: "Assign staff and write a PDF summary",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.schedule(args[0], args[1])
			if err != nil {
				return err
			}
			pdf, err := export.PDFReport(result, title)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[2], pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[2])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "report title")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "template <dir>",
		Short: "Write example sessions.csv and staff.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := models.DateOf(time.Now())
			if from != "" {
				d, err := models.ParseDate(from)
				if err != nil {
					return err
				}
				start = d
			}
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return err
			}

			err := writeFile(filepath.Join(args[0], "sessions.csv"), func(w io.Writer) error {
				return ingest.WriteSessionsTemplate(w, start)
			})
			if err != nil {
				return err
			}
			if err := writeFile(filepath.Join(args[0], "staff.csv"), ingest.WriteStaffTemplate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "templates written to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first exam week starts after this date (YYYY-MM-DD)")
	return cmd
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <userID>",
		Short: "Print an HMAC-signed API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.APIMasterSecret == "" {
				return fmt.Errorf("API_MASTER_SECRET is not set")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], auth.GenerateHMACKey(cfg.APIMasterSecret, args[0]))
			return nil
		},
	}
}

// writeFile creates path and fills it with write. The close error is returned
// when the write itself succeeded.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
